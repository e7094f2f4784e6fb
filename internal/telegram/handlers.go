package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ilhammtg/mhew-backend/internal/engine"
	"github.com/ilhammtg/mhew-backend/internal/geo"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// Handlers manages command handling for the bot.
type Handlers struct {
	api       *tgbotapi.BotAPI
	service   *engine.Service
	scheduler *engine.Scheduler
}

// NewHandlers creates a new handlers instance.
func NewHandlers(api *tgbotapi.BotAPI, service *engine.Service, scheduler *engine.Scheduler) *Handlers {
	return &Handlers{
		api:       api,
		service:   service,
		scheduler: scheduler,
	}
}

// HandleCommand routes commands to appropriate handlers.
func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	subscriberID := strconv.FormatInt(msg.Chat.ID, 10)

	logger.Debug().
		Str("command", command).
		Str("args", args).
		Str("subscriber", subscriberID).
		Msg("Received command")

	h.trackSubscriber(msg.Chat)

	switch command {
	case "start":
		h.handleStart(msg, subscriberID)
	case "help":
		h.handleHelp(msg)
	case "add":
		h.handleAdd(ctx, msg, subscriberID, args)
	case "remove", "del":
		h.handleRemove(msg, subscriberID, args)
	case "list":
		h.handleList(msg, subscriberID)
	case "mode":
		h.handleMode(msg, subscriberID, args)
	case "quake", "gempa":
		h.handleQuake(msg)
	case "weather", "cuaca":
		h.handleWeather(msg, subscriberID)
	case "status":
		h.handleStatus(msg, subscriberID)
	default:
		h.sendReply(msg.Chat.ID, "Perintah tidak dikenal. Gunakan /help untuk daftar perintah.")
	}
}

// trackSubscriber stores subscriber information for notifications.
func (h *Handlers) trackSubscriber(chat *tgbotapi.Chat) {
	title := chat.Title
	if chat.Type == "private" {
		title = strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	}

	id := strconv.FormatInt(chat.ID, 10)
	if err := h.service.EnsureSubscriber(id, chat.Type, title); err != nil {
		logger.Error().Err(err).Str("subscriber", id).Msg("Failed to track subscriber")
	}
}

// handleStart registers the subscriber's timers and sends a welcome message.
func (h *Handlers) handleStart(msg *tgbotapi.Message, subscriberID string) {
	h.scheduler.RegisterSubscriber(subscriberID)

	text := `👋 *MHEWS - Multi-Hazard Early Warning System*

Bot ini memantau:
🌍 Gempa (BMKG AutoGempa)
⛈ Peringatan Cuaca (BMKG Nowcast)
🌬 Log Cuaca & Banjir (Windy / BMKG Forecast)

*Cara pakai cepat:*
1) ` + "`/add <nama kota>`" + ` untuk menambah lokasi pantauan
2) ` + "`/list`" + ` untuk melihat lokasi
3) ` + "`/mode bmkg|windy|both`" + ` untuk memilih sumber cuaca

Bot akan mengirim notifikasi otomatis saat ada bahaya.`

	h.sendMarkdown(msg.Chat.ID, text)
}

// handleHelp sends help information.
func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	text := `📚 *Daftar Perintah*

• ` + "`/add <nama lokasi>`" + ` - tambah lokasi pantauan
• ` + "`/remove <nomor id>`" + ` - hapus lokasi (id dari /list)
• ` + "`/list`" + ` - daftar lokasi terpantau
• ` + "`/mode <bmkg|windy|both>`" + ` - pilih sumber cuaca
• ` + "`/quake`" + ` - info gempa terkini
• ` + "`/weather`" + ` - cuaca terakhir per lokasi
• ` + "`/status`" + ` - status sistem

*Contoh:*
` + "`/add Banda Aceh`" + `
` + "`/mode both`"

	h.sendMarkdown(msg.Chat.ID, text)
}

// handleAdd resolves and registers a monitored location.
func (h *Handlers) handleAdd(ctx context.Context, msg *tgbotapi.Message, subscriberID, args string) {
	if args == "" {
		h.sendReply(msg.Chat.ID, "❌ Sebutkan nama lokasi, contoh: `/add Banda Aceh`")
		return
	}

	resolveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	createdBy := subscriberID
	if msg.From != nil {
		createdBy = strconv.FormatInt(msg.From.ID, 10)
	}

	loc, err := h.service.RegisterLocation(resolveCtx, subscriberID, createdBy, args)
	if errors.Is(err, geo.ErrNotFound) {
		h.sendReply(msg.Chat.ID, "❌ *Lokasi tidak ditemukan.* Coba lebih spesifik, contoh: `Banda Aceh, Indonesia`")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("name", args).Msg("Failed to register location")
		h.sendReply(msg.Chat.ID, "⚠️ Gagal menyimpan lokasi, coba lagi nanti.")
		return
	}

	code := "belum terpetakan"
	if loc.RegionCode != nil {
		code = *loc.RegionCode
	}
	text := fmt.Sprintf(`✅ *LOKASI TERSIMPAN*

📍 *Nama:* %s
🧭 *Koordinat:* `+"`%.4f, %.4f`"+`
🗺 *Kode Wilayah:* %s

Lokasi ini akan dipantau otomatis.`, loc.Name, loc.Lat, loc.Lon, code)
	h.sendMarkdown(msg.Chat.ID, text)
}

// handleRemove deletes a location by the id shown in /list.
func (h *Handlers) handleRemove(msg *tgbotapi.Message, subscriberID, args string) {
	locationID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		h.sendReply(msg.Chat.ID, "❌ Sebutkan id lokasi dari `/list`, contoh: `/remove 2`")
		return
	}

	err = h.service.RemoveLocation(subscriberID, locationID)
	if errors.Is(err, storage.ErrLocationNotFound) {
		h.sendReply(msg.Chat.ID, "❌ Lokasi tidak ditemukan.")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("location_id", locationID).Msg("Failed to remove location")
		h.sendReply(msg.Chat.ID, "⚠️ Gagal menghapus lokasi, coba lagi nanti.")
		return
	}

	h.sendReply(msg.Chat.ID, "✅ Lokasi dihapus.")
}

// handleList shows all monitored locations.
func (h *Handlers) handleList(msg *tgbotapi.Message, subscriberID string) {
	locs, err := h.service.Locations(subscriberID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list locations")
		h.sendReply(msg.Chat.ID, "⚠️ Gagal mengambil daftar lokasi.")
		return
	}

	if len(locs) == 0 {
		h.sendReply(msg.Chat.ID, "📭 Belum ada lokasi. Gunakan `/add <nama kota>`.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📍 *Lokasi Terpantau (%d)*\n\n", len(locs)))
	for i, loc := range locs {
		sb.WriteString(fmt.Sprintf("%d. *%s* (id %d)\n   📌 `%.4f, %.4f`\n", i+1, loc.Name, loc.ID, loc.Lat, loc.Lon))
	}
	sb.WriteString("\nHapus dengan `/remove <id>`")

	h.sendMarkdown(msg.Chat.ID, sb.String())
}

// handleMode updates the weather mode preference.
func (h *Handlers) handleMode(msg *tgbotapi.Message, subscriberID, args string) {
	mode := strings.ToLower(args)
	if mode == "" {
		current, err := h.service.WeatherMode(subscriberID)
		if err != nil {
			h.sendReply(msg.Chat.ID, "⚠️ Gagal membaca pengaturan.")
			return
		}
		h.sendMarkdown(msg.Chat.ID, fmt.Sprintf("⚙️ Mode cuaca aktif: `%s`\n\nUbah dengan `/mode bmkg`, `/mode windy`, atau `/mode both`.", strings.ToUpper(current)))
		return
	}

	if err := h.service.SetWeatherMode(subscriberID, mode); err != nil {
		h.sendReply(msg.Chat.ID, "❌ Mode tidak valid. Pilihan: `bmkg`, `windy`, `both`.")
		return
	}
	h.sendMarkdown(msg.Chat.ID, fmt.Sprintf("✅ Mode cuaca: `%s`", strings.ToUpper(mode)))
}

// handleQuake shows the latest ingested earthquake report.
func (h *Handlers) handleQuake(msg *tgbotapi.Message) {
	ev, err := h.service.LatestSeismicEvent()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read latest seismic event")
		h.sendReply(msg.Chat.ID, "⚠️ Gagal mengambil data gempa.")
		return
	}
	if ev == nil {
		h.sendReply(msg.Chat.ID, "📭 Belum ada data gempa tercatat.")
		return
	}

	text := fmt.Sprintf(`🌍 *INFORMASI GEMPA TERKINI*

📍 *Wilayah:* %s
📏 *Magnitudo:* %.1f SR
📉 *Kedalaman:* %s
🌊 *Potensi:* %s
🚨 *Level:* %s
⏱ *Waktu:* %s

ℹ️ *Sumber:* BMKG`, ev.Region, ev.Magnitude, ev.Depth, ev.Potential, ev.AlertLevel, ev.ReportedAt)

	h.sendMarkdown(msg.Chat.ID, text)
}

// handleWeather shows the latest reading for each of the subscriber's
// locations.
func (h *Handlers) handleWeather(msg *tgbotapi.Message, subscriberID string) {
	locs, err := h.service.Locations(subscriberID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list locations")
		h.sendReply(msg.Chat.ID, "⚠️ Gagal mengambil daftar lokasi.")
		return
	}
	if len(locs) == 0 {
		h.sendReply(msg.Chat.ID, "📭 Belum ada lokasi. Gunakan `/add <nama kota>`.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🌦 *CUACA TERAKHIR*\n")
	for _, loc := range locs {
		sb.WriteString(fmt.Sprintf("\n📍 *%s*\n", loc.Name))

		forecasts, err := h.service.PointForecast(loc.ID)
		if err != nil || len(forecasts) == 0 || forecasts[0].Latest == nil {
			sb.WriteString("   Belum ada data.\n")
			continue
		}

		r := forecasts[0].Latest
		if r.WeatherText != "" {
			sb.WriteString(fmt.Sprintf("   ☁️ %s\n", r.WeatherText))
		}
		if r.Temperature != nil {
			sb.WriteString(fmt.Sprintf("   🌡 %.1f °C\n", *r.Temperature))
		}
		if r.WindSpeed != nil {
			sb.WriteString(fmt.Sprintf("   🌬 %.1f m/s\n", *r.WindSpeed))
		}
		if r.Precip != nil {
			sb.WriteString(fmt.Sprintf("   🌧 %.1f mm\n", *r.Precip))
		}
		sb.WriteString(fmt.Sprintf("   🕒 %s (%s)\n", r.SampledAt.Format("02 Jan 15:04"), r.Source))
	}

	h.sendMarkdown(msg.Chat.ID, sb.String())
}

// handleStatus shows monitoring status for this subscriber.
func (h *Handlers) handleStatus(msg *tgbotapi.Message, subscriberID string) {
	mode, err := h.service.WeatherMode(subscriberID)
	if err != nil {
		mode = "?"
	}

	locs, _ := h.service.Locations(subscriberID)

	lastQuake := "Belum ada"
	siren := "tidak aktif"
	if ev, err := h.service.LatestSeismicEvent(); err == nil && ev != nil {
		lastQuake = ev.ReportedAt
		if hazard.ParseLevel(ev.AlertLevel) == hazard.Danger {
			siren = "AKTIF 🚨"
		}
	}

	text := fmt.Sprintf(`📊 *STATUS SISTEM*

✅ *Status:* Online
🌐 *Mode Cuaca:* `+"`%s`"+`
📍 *Lokasi Terpantau:* %d
🌍 *Gempa Terakhir:* %s
🚨 *Sirine:* %s
⏰ *Timer Aktif:* %d`, strings.ToUpper(mode), len(locs), lastQuake, siren, h.scheduler.TimerCount())

	h.sendMarkdown(msg.Chat.ID, text)
}

// sendReply sends a simple text reply.
func (h *Handlers) sendReply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.api.Send(msg); err != nil {
		logger.Error().Err(err).Msg("Failed to send reply")
	}
}

// sendMarkdown sends a markdown-formatted message.
func (h *Handlers) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := h.api.Send(msg); err != nil {
		logger.Error().Err(err).Msg("Failed to send markdown message")
	}
}
