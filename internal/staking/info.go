// internal/staking/info.go
package staking

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/protocol/aftermath"
)

// RefreshInfo fetches the exchange rate, validator APYs, system state and
// validator configs concurrently and replaces the snapshot. On any failure
// the previous snapshot is kept and ErrInfoUnavailable is returned.
func (s *Service) RefreshInfo(ctx context.Context) error {
	var (
		rate    float64
		apys    []aftermath.ValidatorAPY
		state   *sui.SystemState
		configs []aftermath.ValidatorConfig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rate, err = s.protocol.ExchangeRate(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		apys, err = s.protocol.ValidatorAPYs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		state, err = s.chain.GetLatestSuiSystemState(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		configs, err = s.protocol.ValidatorConfigs(gctx)
		return err
	})

	err := g.Wait()
	if err == nil && (!(rate > 0) || math.IsInf(rate, 0)) {
		err = fmt.Errorf("invalid exchange rate %v", rate)
	}
	if err != nil {
		s.logger.Warn("Failed to fetch staking info", zap.Error(err))
		s.publish(events.InfoRefreshFailedEvent{
			BaseEvent: events.NewBaseEvent(events.InfoRefreshFailed),
			Error:     err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrInfoUnavailable, err)
	}

	info := resolveInfo(s.config.ValidatorAddress, rate, apys, state, configs)
	s.info.Store(info)

	s.logger.Debug("Staking info refreshed",
		zap.Float64("exchange_rate", info.ExchangeRate),
		zap.Float64("validator_apy", info.ValidatorAPY),
		zap.Float64("validator_fee", info.ValidatorFee),
		zap.String("validator", info.ValidatorName))
	s.publish(events.InfoRefreshedEvent{
		BaseEvent:     events.NewBaseEvent(events.InfoRefreshed),
		ExchangeRate:  info.ExchangeRate,
		ValidatorAPY:  info.ValidatorAPY,
		ValidatorFee:  info.ValidatorFee,
		ValidatorName: info.ValidatorName,
	})
	return nil
}

// resolveInfo picks the configured validator out of the fetched lists.
// Missing entries fall back to the default name, zero APY and zero fee.
func resolveInfo(
	validator string,
	rate float64,
	apys []aftermath.ValidatorAPY,
	state *sui.SystemState,
	configs []aftermath.ValidatorConfig,
) *ProtocolInfo {
	info := &ProtocolInfo{
		ExchangeRate:  rate,
		ValidatorName: DefaultValidatorName,
		UpdatedAt:     time.Now(),
	}

	for _, a := range apys {
		if a.Address == validator {
			info.ValidatorAPY = a.APY
			break
		}
	}
	if state != nil {
		if v, ok := state.FindValidator(validator); ok && v.Name != "" {
			info.ValidatorName = v.Name
		}
	}
	for _, c := range configs {
		if c.SuiAddress == validator {
			info.ValidatorFee = c.Fee * 100
			break
		}
	}
	return info
}

// Info returns the current snapshot, or nil if none was loaded yet.
func (s *Service) Info() *ProtocolInfo {
	return s.info.Load()
}

// refreshInBackground schedules a refresh bound to the service lifetime.
// It does not block the caller.
func (s *Service) refreshInBackground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, backgroundRefreshLimit)
		defer cancel()
		_ = s.RefreshInfo(ctx)
	}()
}
