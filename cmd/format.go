package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/lunchbox/pkg/core"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	favoriteStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	cacheStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	titleCaser = cases.Title(language.English)
)

// formatRating renders a star bar like "★★★★☆ 4.2".
func formatRating(rating *float64) string {
	if rating == nil {
		return "unrated"
	}
	full := int(*rating + 0.5)
	if full > 5 {
		full = 5
	}
	return fmt.Sprintf("%s%s %.1f", strings.Repeat("★", full), strings.Repeat("☆", 5-full), *rating)
}

func formatPrice(priceLevel *int) string {
	if priceLevel == nil || *priceLevel <= 0 {
		return ""
	}
	n := *priceLevel
	if n > 4 {
		n = 4
	}
	return strings.Repeat("€", n)
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0fm", meters)
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

// renderPlaces prints a result list. When from is non-nil, each place gets a
// distance from that point.
func renderPlaces(title string, placeList []core.Place, from *core.Location, fromCache bool) {
	fmt.Println(titleStyle.Render(titleCaser.String(title)))

	if len(placeList) == 0 {
		fmt.Println(noDataStyle.Render("No places found"))
		return
	}

	for i, place := range placeList {
		marker := "  "
		if place.IsFavorite {
			marker = favoriteStyle.Render("♥ ")
		}
		fmt.Printf("%2d. %s%s\n", i+1, marker, nameStyle.Render(place.Name))

		meta := []string{formatRating(place.Rating)}
		if price := formatPrice(place.PriceLevel); price != "" {
			meta = append(meta, price)
		}
		if from != nil {
			meta = append(meta, formatDistance(from.DistanceTo(place.Location)))
		}
		if place.Address != "" {
			meta = append(meta, place.Address)
		}
		fmt.Printf("      %s\n", metaStyle.Render(strings.Join(meta, " · ")))
	}

	summary := fmt.Sprintf("%d places", len(placeList))
	if fromCache {
		summary += cacheStyle.Render("  (cached results; network unavailable)")
	}
	fmt.Printf("\n%s\n", summary)
}

// renderDetail prints a place detail record.
func renderDetail(detail *core.PlaceDetail) {
	fmt.Println(titleStyle.Render(detail.Name))

	if detail.IsFavorite {
		fmt.Println(favoriteStyle.Render("♥ favorite"))
	}
	fmt.Printf("%s\n", metaStyle.Render(formatRating(detail.Rating)))
	if detail.Address != "" {
		fmt.Printf("Address: %s\n", detail.Address)
	}
	if detail.Phone != "" {
		fmt.Printf("Phone:   %s\n", detail.Phone)
	}
	if detail.Website != "" {
		fmt.Printf("Website: %s\n", detail.Website)
	}
	if len(detail.OpeningHours) > 0 {
		fmt.Println("Hours:")
		for _, line := range detail.OpeningHours {
			fmt.Printf("  %s\n", line)
		}
	}
	if len(detail.Reviews) > 0 {
		fmt.Println("\nReviews:")
		for _, review := range detail.Reviews {
			fmt.Printf("  %s (%s)\n", nameStyle.Render(review.Author), formatRating(&review.Rating))
			if review.Text != "" {
				fmt.Printf("  %s\n", review.Text)
			}
		}
	}
}
