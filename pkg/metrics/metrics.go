// Package metrics define las métricas Prometheus propias de la API de ventas.
// Se registran en el registry por defecto al importar el paquete (promauto) y se
// exponen en /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ventas"

// ── Ventas ────────────────────────────────────────────────────────────────────

// SalesRecordedTotal ventas confirmadas.
// Label:
//   - origin: "api" o "import"
var SalesRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_recorded_total",
		Help:      "Total de ventas registradas, por origen.",
	},
	[]string{"origin"},
)

// SalesRejectedTotal ventas rechazadas.
// Label:
//   - reason: "validation", "product_not_found", "insufficient_stock", "merge_failed", "persistence"
var SalesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_rejected_total",
		Help:      "Total de ventas rechazadas, por motivo.",
	},
	[]string{"reason"},
)

// CustomerMergesTotal fusiones de clientes.
// Label:
//   - outcome: "created" o "updated"
var CustomerMergesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "customer_merges_total",
		Help:      "Total de fusiones de clientes por email, por resultado.",
	},
	[]string{"outcome"},
)

// ── Importación ───────────────────────────────────────────────────────────────

// ImportRowsTotal filas procesadas en cargas masivas.
// Labels:
//   - target: "products" o "sales"
//   - result: "applied" o "failed"
var ImportRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Total de filas procesadas en importaciones, por destino y resultado.",
	},
	[]string{"target", "result"},
)

// ImportsRejectedTotal archivos rechazados antes de aplicar filas (parseo o esquema).
var ImportsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_rejected_total",
		Help:      "Total de archivos de importación rechazados, por motivo.",
	},
	[]string{"target", "reason"},
)
