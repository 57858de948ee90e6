package posts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	attachmentsUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_attachments_uploaded_total",
			Help: "Total number of attachment blobs uploaded",
		},
	)

	likesToggledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_likes_toggled_total",
			Help: "Total number of like toggles",
		},
		[]string{"action"},
	)

	commentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_comments_total",
			Help: "Total number of comment mutations",
		},
		[]string{"action"},
	)

	feedCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_requests_total",
			Help: "Feed cache lookups by result",
		},
		[]string{"result"},
	)
)
