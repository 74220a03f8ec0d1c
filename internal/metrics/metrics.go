// Package metrics содержит счётчики Prometheus для внешних вызовов:
// обращений к сервису генеративного анализа и событий webhook.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AIRequestsTotal считает обращения к внешнему генеративному сервису
// по виду запроса (extract, analyze) и результату (ok, error).
var AIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dealshield_ai_requests_total",
	Help: "Number of requests to the generative AI service.",
}, []string{"kind", "result"})

// WebhookEventsTotal считает входящие события платёжного провайдера
// по типу события и итогу обработки (processed, ignored, rejected).
var WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dealshield_webhook_events_total",
	Help: "Number of payment webhook events received.",
}, []string{"type", "outcome"})
