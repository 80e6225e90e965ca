package service

import (
	"context"
	"errors"

	"pdfchat-go/pkg/log"
)

// CheckHealth 探测后端，失败（包括被取消）都会被吞掉。
func (o *orchestrator) CheckHealth(ctx context.Context) {
	body, err := o.client.Health(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Warnw("[health] backend unreachable", "error", err)
		return
	}
	log.Infow("[health] backend reachable", "body", body)
}
