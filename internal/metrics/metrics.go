package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mystore_purchases_created_total",
		Help: "Purchases accepted with stock decremented.",
	})

	PurchasesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mystore_purchases_resolved_total",
		Help: "Purchases resolved by an admin, by action.",
	}, []string{"action"})

	PurchasesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mystore_purchases_rejected_total",
		Help: "Purchase attempts rejected for insufficient stock.",
	})

	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mystore_image_uploads_total",
		Help: "Product image uploads, by outcome.",
	}, []string{"outcome"})
)
