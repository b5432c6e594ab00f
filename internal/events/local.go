package events

import (
	"context"
	"fmt"
	"storefront-api/internal/client"
	"storefront-api/internal/jobs"
	"storefront-api/internal/model"
)

type Submitter interface {
	Submit(name string, job jobs.Job) error
}

// OrderHandler is the receipt job entry point.
type OrderHandler func(ctx context.Context, orderID string) error

// LocalOrderNotifier queues the receipt job in this process.
type LocalOrderNotifier struct {
	jobs    Submitter
	handler OrderHandler
}

func NewLocalOrderNotifier(jobs Submitter, handler OrderHandler) *LocalOrderNotifier {
	return &LocalOrderNotifier{jobs: jobs, handler: handler}
}

func (n *LocalOrderNotifier) OrderCompleted(_ context.Context, orderID string) error {
	err := n.jobs.Submit("receipt:"+orderID, func(ctx context.Context) error {
		return n.handler(ctx, orderID)
	})
	if err != nil {
		return fmt.Errorf("queue receipt job for order %s: %w", orderID, err)
	}
	return nil
}

const welcomeSubject = "Welcome to Storefront!"

// WelcomeMailer sends the registration email from a background job.
type WelcomeMailer struct {
	jobs   Submitter
	mailer client.Mailer
}

func NewWelcomeMailer(jobs Submitter, mailer client.Mailer) *WelcomeMailer {
	return &WelcomeMailer{jobs: jobs, mailer: mailer}
}

func (w *WelcomeMailer) SendWelcome(_ context.Context, user *model.User) error {
	mail := &client.Mail{
		ToAddress: user.Email,
		ToName:    user.Username,
		Subject:   welcomeSubject,
		Body: fmt.Sprintf("Hello %s,\n\nYour account is ready. Browse the stores and check out whenever you like.\n",
			user.Username),
	}
	return w.jobs.Submit("welcome:"+user.ID, func(ctx context.Context) error {
		return w.mailer.Send(ctx, mail)
	})
}
