package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/amount"
	"github.com/rovshanmuradov/afsui-staker/internal/staking"
	"github.com/rovshanmuradov/afsui-staker/internal/ui"
)

func (a *app) runTUI(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		a.logger.Warn("Starting without a ready account", zap.Error(err))
	}
	if a.service.Account() == nil {
		go func() { _ = a.service.RefreshInfo(ctx) }()
	}
	a.prices.Start(ctx)

	updates := ui.NewUpdateSender(ctx, ui.DefaultUpdateBuffer, a.logger)
	defer updates.Close()
	sub := updates.ForwardEvents(a.bus)
	defer sub.Unsubscribe()
	updates.ForwardLogs(a.logs)

	recovery := ui.NewRecoveryHandler(a.logger, func() (tea.Model, []tea.ProgramOption) {
		model := ui.NewModel(ctx, a.service, a.logger,
			ui.Config{Network: a.cfg.Network, FeeReserve: a.cfg.FeeReserve},
			ui.WithUpdates(updates.Attach()),
			ui.WithLogBuffer(a.logs),
			ui.WithPrices(a.prices),
			ui.WithSession(a.journal))
		return model, []tea.ProgramOption{tea.WithAltScreen()}
	})
	return recovery.Run(ctx)
}

func (a *app) printInfo(ctx context.Context) error {
	if err := a.service.RefreshInfo(ctx); err != nil {
		return err
	}
	info := a.service.Info()
	fmt.Printf("Validator:     %s\n", info.ValidatorName)
	fmt.Printf("Address:       %s\n", a.cfg.ValidatorAddress)
	fmt.Printf("APY:           %.2f%%\n", info.ValidatorAPY*100)
	fmt.Printf("Fee:           %.2f%%\n", info.ValidatorFee)
	fmt.Printf("Exchange rate: 1 afSUI = %.6f SUI\n", info.ExchangeRate)
	return nil
}

func (a *app) printBalance(ctx context.Context) error {
	if err := a.connect(ctx); err != nil && a.service.Account() == nil {
		return err
	}
	mist, err := a.service.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s %s\n", a.wallet.Address(), amount.FormatBaseUnits(mist, amount.Decimals), amount.Unit)
	return nil
}

func (a *app) printPrice(ctx context.Context) error {
	usd, err := a.feed.Price(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("1 SUI = $%.4f\n", usd)
	return nil
}

func (a *app) printExpected(ctx context.Context, input string) error {
	input = amount.Sanitize(input, amount.Decimals)
	if result := a.service.ValidateAmount(input); !result.Valid {
		return validationError(result)
	}
	if err := a.service.RefreshInfo(ctx); err != nil {
		return err
	}
	expected, ok := a.service.CalculateExpected(input)
	if !ok {
		return staking.ErrInfoUnavailable
	}
	fmt.Printf("%s SUI ≈ %s afSUI\n", input, expected)
	return nil
}

func (a *app) stake(ctx context.Context, input string) error {
	if err := a.connect(ctx); err != nil {
		if a.service.Account() == nil {
			return err
		}
		a.logger.Warn("Staking information refresh failed", zap.Error(err))
	}

	outcome := a.service.Stake(ctx, input)
	if !outcome.Success {
		return fmt.Errorf("stake failed: %s", outcome.Error)
	}
	fmt.Printf("Staked %s SUI, received ≈ %s afSUI\n", input, outcome.ReceivedAmount)
	fmt.Printf("Transaction: %s (%d ms)\n", outcome.TxDigest, outcome.ElapsedMs)
	return nil
}

func validationError(result amount.ValidationResult) error {
	if result.Error == "" {
		return errors.New(staking.MsgInvalidAmount)
	}
	return errors.New(result.Error)
}
