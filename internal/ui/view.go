package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/afsui-staker/internal/amount"
	"github.com/rovshanmuradov/afsui-staker/internal/logger"
	"github.com/rovshanmuradov/afsui-staker/internal/staking"
)

const insufficientBalance = "Insufficient Balance"

func (m *Model) View() string {
	sections := []string{
		m.styles.Title.Render("Stake SUI → afSUI"),
		m.header(),
		m.protocolView(),
		m.formView(),
		m.resultView(),
		m.sessionView(),
	}

	body := m.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, compact(sections)...))

	bindings := m.keys.ShortHelp()
	if m.fullHelp {
		bindings = m.keys.FullHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.logs.View(), m.help.SetKeyBindings(bindings).View())
}

func (m *Model) header() string {
	account := m.backend.Account()
	wallet := m.styles.Muted.Render("not connected")
	if account != nil {
		wallet = m.styles.Value.Render(logger.ShortenAddress(account.Address))
	}

	balance := m.styles.Muted.Render("-")
	switch {
	case m.balanceKnown:
		balance = m.styles.Value.Render(amount.FormatBaseUnits(m.balance, amount.Decimals) + " " + amount.Unit)
	case m.balanceErr != nil:
		balance = m.styles.Error.Render("unavailable")
	}

	return m.row("Network", m.styles.Value.Render(m.config.Network)) + "\n" +
		m.row("Wallet", wallet) + "\n" +
		m.row("Balance", balance)
}

func (m *Model) protocolView() string {
	info := m.backend.Info()
	if info == nil {
		if m.refreshErr != nil {
			return m.styles.Error.Render("Staking information unavailable: " + m.refreshErr.Error())
		}
		return m.styles.Muted.Render("Loading staking information...")
	}

	lines := []string{
		m.row("Validator", m.styles.Value.Render(info.ValidatorName)),
		m.row("APY", m.styles.Value.Render(fmt.Sprintf("%.2f%%", info.ValidatorAPY*100))),
		m.row("Fee", m.styles.Value.Render(fmt.Sprintf("%.2f%%", info.ValidatorFee))),
		m.row("Rate", m.styles.Value.Render(fmt.Sprintf("1 afSUI = %.4f SUI", info.ExchangeRate))),
	}
	if m.refreshErr != nil {
		lines = append(lines, m.styles.Warning.Render("Refresh failed, showing last known values"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) formView() string {
	value := m.input.Value()
	lines := []string{m.row("Amount", m.input.View()+" "+m.styles.Muted.Render(amount.Unit))}

	if result := m.backend.ValidateAmount(value); !result.Valid && result.Error != "" {
		lines = append(lines, m.styles.Error.Render(result.Error))
	} else if result.Valid && m.balanceKnown && m.insufficient(value) {
		lines = append(lines, m.styles.Error.Render(insufficientBalance))
	}

	if expected, ok := m.backend.CalculateExpected(value); ok {
		lines = append(lines, m.row("You receive", m.styles.Accent.Render("≈ "+expected+" afSUI")))
	}
	if usd, ok := m.usdValue(value); ok {
		lines = append(lines, m.row("Value", m.styles.Muted.Render(fmt.Sprintf("$%.2f", usd))))
	}

	lines = append(lines, "", m.button())
	return strings.Join(lines, "\n")
}

func (m *Model) button() string {
	switch {
	case m.staking:
		return m.styles.ButtonOff.Render(m.spinner.View() + " Staking...")
	case m.CanStake():
		return m.styles.Button.Render("Stake")
	default:
		return m.styles.ButtonOff.Render("Stake")
	}
}

func (m *Model) resultView() string {
	if m.last == nil {
		return ""
	}
	return renderOutcome(m.last, m.styles.Success, m.styles.Error)
}

func renderOutcome(o *staking.StakeOutcome, ok, fail lipgloss.Style) string {
	if !o.Success {
		return fail.Render("Stake failed: " + o.Error)
	}
	return ok.Render(fmt.Sprintf("Staked! Received ≈ %s afSUI", o.ReceivedAmount)) + "\n" +
		fmt.Sprintf("Tx %s (%d ms)", logger.ShortenDigest(o.TxDigest), o.ElapsedMs)
}

func (m *Model) sessionView() string {
	if m.session == nil {
		return ""
	}
	stats := m.session.Statistics()
	if stats.Total == 0 {
		return ""
	}
	return m.styles.Muted.Render(fmt.Sprintf("Session: %d stakes, %d failed, %s SUI staked",
		stats.Total, stats.Failed, stats.StakedSUI.String()))
}

func (m *Model) usdValue(value string) (float64, bool) {
	if m.prices == nil || !amount.IsValidStakeAmount(value, 0) {
		return 0, false
	}
	base, err := amount.ToBaseUnits(value, amount.Decimals)
	if err != nil {
		return 0, false
	}
	return m.prices.ValueUSD(amount.ToDisplayUnits(base, amount.Decimals))
}

func (m *Model) row(label, value string) string {
	return m.styles.Label.Width(12).Render(label) + value
}

func compact(sections []string) []string {
	out := sections[:0]
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
