package notifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ilhammtg/mhew-backend/internal/bmkg"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/observability"
	"github.com/ilhammtg/mhew-backend/internal/storage"
)

type recordingTransport struct {
	sent []string
	err  error
}

func (r *recordingTransport) Send(recipientID, text string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, recipientID)
	return nil
}

func TestNotifyDelivers(t *testing.T) {
	transport := &recordingTransport{}
	n := NewNotifier(transport, observability.NewMetricsForTesting())

	n.Notify("12345", "seismic", "alert text")
	assert.Equal(t, []string{"12345"}, transport.sent)
}

func TestNotifySkipsSystem(t *testing.T) {
	transport := &recordingTransport{}
	n := NewNotifier(transport, observability.NewMetricsForTesting())

	n.Notify(storage.SystemSubscriber, "seismic", "alert text")
	assert.Empty(t, transport.sent)
}

func TestNotifySwallowsDeliveryErrors(t *testing.T) {
	transport := &recordingTransport{err: errors.New("chat not found")}
	n := NewNotifier(transport, observability.NewMetricsForTesting())

	// Must not panic or propagate.
	n.Notify("12345", "flood", "alert text")
	assert.Empty(t, transport.sent)
}

func TestSeismicNoticeFormat(t *testing.T) {
	ev := &storage.SeismicEvent{
		ReportedAt: "2026-08-30T12:00:00+07:00",
		Region:     "Barat Daya Banda Aceh",
		Magnitude:  7.1,
		Depth:      "10 km",
		Potential:  "Potensi Tsunami",
	}

	text := SeismicNotice(ev, hazard.Danger)
	assert.Contains(t, text, "BAHAYA: POTENSI TSUNAMI")
	assert.Contains(t, text, "7.1 SR")
	assert.Contains(t, text, "Barat Daya Banda Aceh")

	text = SeismicNotice(ev, hazard.Warning)
	assert.Contains(t, text, "WASPADA")
	assert.NotContains(t, text, "POTENSI TSUNAMI\n")
}

func TestNowcastNoticeTruncatesDescription(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	item := bmkg.NowcastItem{
		Title:       "Peringatan Dini",
		Link:        "https://example.test/1",
		Description: string(long),
	}

	text := NowcastNotice(item)
	assert.Contains(t, text, "...")
	assert.Less(t, len(text), 500)
}

func TestFloodNoticeLevels(t *testing.T) {
	danger := FloodNotice("Banda Aceh", 180.5, hazard.Danger)
	assert.Contains(t, danger, "BAHAYA BANJIR BANDANG")
	assert.Contains(t, danger, "180.5 mm")

	warning := FloodNotice("Banda Aceh", 120.0, hazard.Warning)
	assert.Contains(t, warning, "WASPADA BANJIR")
}

func TestStormNoticeNilFields(t *testing.T) {
	gust := 22.5
	text := StormNotice("Sabang", &gust, nil)
	assert.Contains(t, text, "22.5 m/s")
	assert.Contains(t, text, "🌡 *Tekanan:* -")
}
