package notifier

import (
	"sync"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/pkg/errors"
)

var (
	once   sync.Once
	sender *router.ServiceRouter
)

// NewNotifier builds (or returns) the singleton push sender from shoutrrr
// service URLs. The first successful call fixes config.
func NewNotifier(urls ...string) error {
	var initErr error
	once.Do(func() {
		s, err := shoutrrr.CreateSender(urls...)
		if err != nil {
			initErr = errors.Wrap(err, "failed to create notification sender")
			return
		}
		sender = s
	})
	return initErr
}

func Client() *router.ServiceRouter {
	if sender == nil {
		panic("notifier not initialized")
	}
	return sender
}

// Send pushes one titled message to every configured service. Per-service
// failures are collected into a single error.
func Send(title, body string) error {
	params := types.Params{}
	params.SetTitle(title)

	var combined error
	for _, err := range Client().Send(body, &params) {
		if err != nil {
			if combined == nil {
				combined = err
			} else {
				combined = errors.Wrap(combined, err.Error())
			}
		}
	}
	return combined
}
