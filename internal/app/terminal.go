package app

import (
	"context"
	"fmt"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// ConnectTerminal logs into the mock terminal.
func (s *TradingService) ConnectTerminal(ctx context.Context, login, server string) (*domain.AccountInfo, error) {
	account, err := s.terminal.Connect(ctx, login, server)
	if err != nil {
		s.logger.Warn(ctx, "Terminal connection failed", map[string]interface{}{"login": login, "server": server, "error": err.Error()})
		s.journal(ctx, domain.JournalError, "", fmt.Sprintf("MT5 connection to %s failed: %v", server, err))
		return nil, err
	}
	s.logger.Info(ctx, "Terminal connected", map[string]interface{}{"login": login, "server": server, "balance": account.Balance})
	s.journal(ctx, domain.JournalInfo, "", fmt.Sprintf("Connected to MT5 account %s on %s", login, server))
	return account, nil
}

// DisconnectTerminal closes the mock terminal session.
func (s *TradingService) DisconnectTerminal(ctx context.Context) error {
	if err := s.terminal.Disconnect(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "Terminal disconnected")
	s.journal(ctx, domain.JournalInfo, "", "Disconnected from MT5")
	return nil
}

// TerminalStatus returns the current connection snapshot.
func (s *TradingService) TerminalStatus(ctx context.Context) domain.ConnectionStatus {
	return s.terminal.Status(ctx)
}
