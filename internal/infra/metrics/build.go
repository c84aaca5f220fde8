package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A constant metric with labels for version and completion provider.",
	},
	[]string{"version", "provider"},
)

func SetBuildInfo(version, provider string) {
	buildInfo.WithLabelValues(version, norm(provider)).Set(1)
}
