package notifier

import (
	"fmt"

	"github.com/ilhammtg/mhew-backend/internal/bmkg"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/storage"
)

const divider = "━━━━━━━━━━━━━━━━━━"

// levelBadge returns the emoji and headline label for a severity level.
func levelBadge(level hazard.Level) (emoji, label string) {
	switch level {
	case hazard.Danger:
		return "🔴", "BAHAYA"
	case hazard.Warning:
		return "🟠", "WASPADA"
	case hazard.Waspada:
		return "🟡", "SIAGA"
	default:
		return "🟢", "AMAN"
	}
}

// SeismicNotice formats an earthquake alert.
func SeismicNotice(ev *storage.SeismicEvent, level hazard.Level) string {
	emoji, label := levelBadge(level)
	if level == hazard.Danger {
		label = "BAHAYA: POTENSI TSUNAMI"
	}
	return fmt.Sprintf(
		"%s *%s*\n%s\n"+
			"📍 *Wilayah:* %s\n"+
			"📏 *Magnitudo:* %.1f SR\n"+
			"📉 *Kedalaman:* %s\n"+
			"🌊 *Potensi:* %s\n"+
			"⏱ *Waktu:* %s\n%s\n"+
			"⚠️ _Cek informasi resmi BMKG_",
		emoji, label, divider,
		ev.Region, ev.Magnitude, ev.Depth, ev.Potential, ev.ReportedAt, divider)
}

// NowcastNotice formats a weather warning from the nowcast feed.
func NowcastNotice(item bmkg.NowcastItem) string {
	desc := item.Description
	if len(desc) > 300 {
		desc = desc[:300] + "..."
	}
	return fmt.Sprintf(
		"⛈ *PERINGATAN CUACA BMKG*\n%s\n"+
			"*%s*\n\n%s\n\n"+
			"🔗 [Baca Selengkapnya](%s)\n%s\n📅 %s",
		divider, item.Title, desc, item.Link, divider, item.PubDate)
}

// FloodNotice formats a 24-hour precipitation alert for a location.
func FloodNotice(locationName string, totalMM float64, level hazard.Level) string {
	var headline, advice string
	switch level {
	case hazard.Danger:
		headline = "🔴 *BAHAYA BANJIR BANDANG*"
		advice = "⚠️ Segera evakuasi ke tempat tinggi!"
	default:
		headline = "🟠 *WASPADA BANJIR*"
		advice = "⚠️ Waspada kenaikan debit air."
	}
	return fmt.Sprintf(
		"%s\n%s\n"+
			"📍 *Lokasi:* %s\n"+
			"🌧 *Curah Hujan 24 Jam:* %.1f mm\n%s",
		headline, divider, locationName, totalMM, advice)
}

// StormNotice formats a wind/pressure storm alert for a location.
func StormNotice(locationName string, gustMS, pressureHPa *float64) string {
	gust := "-"
	if gustMS != nil {
		gust = fmt.Sprintf("%.1f m/s", *gustMS)
	}
	pressure := "-"
	if pressureHPa != nil {
		pressure = fmt.Sprintf("%.0f hPa", *pressureHPa)
	}
	return fmt.Sprintf(
		"🌀 *PERINGATAN ANGIN KENCANG*\n%s\n"+
			"📍 *Lokasi:* %s\n"+
			"💨 *Gust:* %s\n"+
			"🌡 *Tekanan:* %s\n"+
			"⚠️ Hindari area terbuka dan perairan.",
		divider, locationName, gust, pressure)
}
