package reduce

import (
	"flock/internal/core"
	"flock/internal/normalize"
	"flock/internal/timewindow"
)

// ReduceMessages summarizes messages sent inside window. Recipients counts
// people reached by delivered messages only.
func ReduceMessages(messages []core.Message, window *timewindow.Window, _ Options) core.MessagingStats {
	stats := core.MessagingStats{ByChannel: []core.LabelCount{}}
	channels := newCounter()

	for _, m := range messages {
		if m.SentAt.IsZero() || !timewindow.In(window, m.SentAt) {
			continue
		}
		stats.Total++
		channels.add(normalize.Normalize(m.Channel, normalize.MessageChannel))
		switch normalize.Normalize(m.Status, normalize.MessageStatus) {
		case normalize.Delivered:
			stats.Delivered++
			stats.Recipients += m.Recipients
		case normalize.Failed:
			stats.Failed++
		default:
			stats.Pending++
		}
	}

	stats.DeliveryRate = percent(float64(stats.Delivered), float64(stats.Total))
	stats.ByChannel = channels.result()
	return stats
}
