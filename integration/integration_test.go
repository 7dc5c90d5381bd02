package integration

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	promadapter "github.com/codewandler/actr-go/adapters/prometheus"
	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/remote"
	"github.com/codewandler/actr-go/core/system"
)

type (
	depositCmd struct {
		Account string `json:"account"`
		Amount  int    `json:"amount"`
	}
	withdrawCmd struct {
		Account string `json:"account"`
		Amount  int    `json:"amount"`
	}
	balanceQuery struct {
		Account string `json:"account"`
	}
	balanceReply struct {
		Account string `json:"account"`
		Balance int    `json:"balance"`
	}
	auditNote struct {
		Text string `json:"text"`
	}
)

// ledger keeps account balances and an audit trail behind one mailbox.
type ledger struct {
	accounts map[string]int
	audit    []string
}

func newLedgerMux() *remote.Mux[*ledger] {
	return remote.NewMux(
		remote.Handle(func(_ context.Context, l *ledger, cmd depositCmd) (balanceReply, error) {
			l.accounts[cmd.Account] += cmd.Amount
			return balanceReply{Account: cmd.Account, Balance: l.accounts[cmd.Account]}, nil
		}),
		remote.Handle(func(_ context.Context, l *ledger, cmd withdrawCmd) (balanceReply, error) {
			if l.accounts[cmd.Account] < cmd.Amount {
				return balanceReply{}, fmt.Errorf("insufficient funds in %s", cmd.Account)
			}
			l.accounts[cmd.Account] -= cmd.Amount
			return balanceReply{Account: cmd.Account, Balance: l.accounts[cmd.Account]}, nil
		}),
		remote.Handle(func(_ context.Context, l *ledger, q balanceQuery) (balanceReply, error) {
			return balanceReply{Account: q.Account, Balance: l.accounts[q.Account]}, nil
		}),
		remote.HandleMsg(func(_ context.Context, l *ledger, n auditNote) error {
			l.audit = append(l.audit, n.Text)
			return nil
		}),
	)
}

func TestIntegration(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics := promadapter.NewAllMetrics(reg)

	sys := system.New(system.Config{
		ID:      "integration",
		Context: ctx,
		Metrics: metrics.Actor,
	})

	book, err := system.Spawn(sys, &ledger{accounts: map[string]int{}}, actor.Options{ID: "ledger"})
	require.NoError(t, err)

	tr := remote.CreateMemTransport(t)
	sub, err := remote.Expose(ctx, tr, "ledger", book, newLedgerMux(), remote.ExposeOptions{
		Metrics: metrics.Remote,
	})
	require.NoError(t, err)

	c, err := remote.NewClient(remote.ClientOptions{
		Transport: tr,
		Metrics:   metrics.Remote,
	})
	require.NoError(t, err)
	lc := c.Actor("ledger")

	// deposits accumulate per account
	deposit := remote.NewRequest[depositCmd, balanceReply](lc)
	res, err := deposit.Request(ctx, depositCmd{Account: "alice", Amount: 100})
	require.NoError(t, err)
	require.Equal(t, balanceReply{Account: "alice", Balance: 100}, *res)

	res, err = deposit.Request(ctx, depositCmd{Account: "alice", Amount: 50})
	require.NoError(t, err)
	require.Equal(t, 150, res.Balance)

	res, err = deposit.Request(ctx, depositCmd{Account: "bob", Amount: 25})
	require.NoError(t, err)
	require.Equal(t, 25, res.Balance)

	// error in handler
	withdraw := remote.NewRequest[withdrawCmd, balanceReply](lc)
	_, err = withdraw.Request(ctx, withdrawCmd{Account: "alice", Amount: 500})
	require.ErrorContains(t, err, "insufficient funds in alice")

	// queries see prior handler effects
	balance := remote.NewRequest[balanceQuery, balanceReply](lc)
	res, err = balance.Request(ctx, balanceQuery{Account: "alice"})
	require.NoError(t, err)
	require.Equal(t, 150, res.Balance)

	// notify waits for the handler, so a local call sees the effect
	require.NoError(t, lc.Notify(ctx, auditNote{Text: "quarterly review"}))
	trail, err := actor.Call(ctx, book, func(_ context.Context, l *ledger) ([]string, error) {
		return append([]string(nil), l.audit...), nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"quarterly review"}, trail)

	// unbinding stops routing
	require.NoError(t, sub.Unsubscribe())
	_, err = balance.Request(ctx, balanceQuery{Account: "alice"})
	require.ErrorIs(t, err, remote.ErrNoSuchActor)

	// both pillars reported into the same registry
	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["actr_actor_envelopes_total"])
	require.True(t, names["actr_remote_requests_total"])

	// releasing the last handle drains everything
	book.Release()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	require.NoError(t, sys.Shutdown(shutdownCtx))
	require.Equal(t, 0, sys.Actors())
}
