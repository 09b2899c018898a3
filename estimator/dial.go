package estimator

import (
	"context"
	"log/slog"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/config"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/ews"
)

// Dialer returns the production DialFunc: resolve the endpoint (explicit
// server or autodiscover) and build an EWS client impersonating the
// mailbox. Each mailbox re-resolves its endpoint independently since
// endpoints may differ per user.
func Dialer(cfg config.Config, logger *slog.Logger) DialFunc {
	return func(ctx context.Context, mailbox string) (MailClient, error) {
		opts := ews.Options{
			Username:           cfg.Username,
			Password:           cfg.Password,
			Mailbox:            mailbox,
			PageSize:           cfg.PageSize,
			Timeout:            cfg.Timeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}

		endpoint := cfg.EndpointURL()
		if endpoint == "" {
			discovered, err := ews.Discover(ctx, mailbox, opts)
			if err != nil {
				return nil, &FatalError{Code: ExitAutodiscover, Mailbox: mailbox, Err: err}
			}
			endpoint = discovered
			logger.Debug("endpoint discovered", "mailbox", mailbox, "endpoint", endpoint)
		}
		opts.Endpoint = endpoint

		return ews.NewClient(opts, logger)
	}
}
