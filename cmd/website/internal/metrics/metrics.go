package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// AdminMutationsTotal counts admin writes by entity, action and result.
	AdminMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_admin_mutations_total",
			Help: "Total number of admin mutations",
		},
		[]string{"entity", "action", "result"},
	)

	UploadURLsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_upload_urls_issued_total",
			Help: "Total number of signed upload URL requests",
		},
		[]string{"result"},
	)

	PhotosRegisteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_photos_registered_total",
			Help: "Total number of photo registrations",
		},
		[]string{"flow", "result"},
	)

	ContactMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_contact_messages_total",
			Help: "Total number of contact messages relayed",
		},
		[]string{"result"},
	)

	OrphanBlobsRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_orphan_blobs_removed_total",
			Help: "Total number of unregistered gallery files removed by reconciliation",
		},
	)

	MissingBlobsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_missing_blobs",
			Help: "Photos whose stored file was missing at the last reconciliation",
		},
	)

	ThumbnailsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_thumbnails_created_total",
			Help: "Total number of thumbnails created",
		},
		[]string{"result"},
	)
)

func Result(err error) string {
	if err != nil {
		return ResultFailure
	}

	return ResultSuccess
}
