package singleinstance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const sendTimeout = 5 * time.Second

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, command string) (bool, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, nil
	}
	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sendTimeout)
		defer cancel()
	}
	return true, sendCommand(ctx, residentAddr(port), command)
}

func sendCommand(ctx context.Context, addr, command string) error {
	status, err := exchange(ctx, addr, cmdPrefix+command+"\n")
	if err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}
	switch {
	case status == okResponse:
		return nil
	case strings.HasPrefix(status, errPrefix):
		return errors.New(strings.TrimSpace(strings.TrimPrefix(status, errPrefix)))
	default:
		return fmt.Errorf("unexpected response %q", status)
	}
}
