package backend

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-ping/ping"
	"go.uber.org/zap"
)

const DetectPingCount = 3

var pingHost = func(host string, count int) (time.Duration, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.Count = count
	pinger.Timeout = time.Duration(count) * time.Second
	if err := pinger.Run(); err != nil {
		return 0, err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("host(%s) is unreachable", host)
	}
	return stats.AvgRtt, nil
}

func nodeHost(node string) (string, error) {
	u, err := url.Parse(node)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("node(%s) has no host", node)
	}
	return u.Hostname(), nil
}

// DetectNodes pings every node and returns the one with the lowest average round trip.
func DetectNodes(nodes []string, log *zap.Logger) (string, time.Duration, error) {
	if log == nil {
		log = zap.NewNop()
	}
	best, bestRtt := "", time.Duration(0)
	for _, node := range nodes {
		host, err := nodeHost(node)
		if err != nil {
			log.Warn("detect node", zap.String("node", node), zap.Error(err))
			continue
		}
		rtt, err := pingHost(host, DetectPingCount)
		if err != nil {
			log.Warn("detect node", zap.String("node", node), zap.Error(err))
			continue
		}
		log.Info("detect node", zap.String("node", node), zap.Duration("rtt", rtt))
		if best == "" || rtt < bestRtt {
			best, bestRtt = node, rtt
		}
	}
	if best == "" {
		return "", 0, fmt.Errorf("no reachable node in %d candidates", len(nodes))
	}
	return best, bestRtt, nil
}
