package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/mail"
	"github.com/joestump/cleo/internal/metrics"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// verifier issues email verification tokens and mails their links.
type verifier struct {
	mailer   mail.Sender
	smtpPort int
}

// issue replaces userID's outstanding tokens with a fresh one for addr and
// mails the link. It runs against db so callers can roll the token back
// together with the change that required it when delivery fails.
func (v *verifier) issue(ctx context.Context, db store.DB, userID, addr string) error {
	in, err := store.NewInstanceStore(db).Get(ctx)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}

	plaintext, hash, err := auth.GenerateEmailToken()
	if err != nil {
		return fmt.Errorf("generate email token: %w", err)
	}
	tokens := store.NewEmailTokenStore(db)
	if err := tokens.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("drop old email tokens: %w", err)
	}
	if _, err := tokens.Create(ctx, userID, hash, addr); err != nil {
		return fmt.Errorf("store email token: %w", err)
	}

	err = v.mailer.Send(ctx, mail.SettingsFor(in, v.smtpPort), mail.VerificationMessage(in, addr, plaintext))
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("ok").Inc()
	return nil
}

// emailAPIHandler redeems verification links.
type emailAPIHandler struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func registerEmailRoutes(r chi.Router, h *emailAPIHandler) {
	r.Get(routes.EmailVerify, h.Verify)
}

// Verify marks the address a token was issued for as confirmed. Tokens are
// single use, and a token for an address the user has since replaced is
// treated as unknown.
//
// @Summary      Verify an email address
// @Tags         Email
// @Produce      json
// @Param        token  path      string  true  "Token from the verification email"
// @Success      200    {object}  StatusResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /email/{token} [get]
func (h *emailAPIHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}

	err := store.WithTx(r.Context(), h.db, func(tx *sqlx.Tx) error {
		tokens := store.NewEmailTokenStore(tx)
		users := store.NewUserStore(tx)

		et, err := tokens.GetByHash(r.Context(), auth.HashToken(token))
		if err != nil {
			return err
		}
		user, err := users.GetByID(r.Context(), et.UserID)
		if err != nil {
			return err
		}
		if user.Email != et.Email {
			return store.ErrNotFound
		}
		if err := users.SetVerified(r.Context(), user.ID); err != nil {
			return err
		}
		return tokens.Delete(r.Context(), et.ID)
	})
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}
