package application

import (
	"context"

	"github.com/dmehra2102/chipstore/internal/notification/domain"
)

type Sender interface {
	Send(ctx context.Context, msg domain.Message) error
}
