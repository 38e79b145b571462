package ui

import (
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/staking"
)

// Tea messages produced by commands and by the update feed.

// balanceMsg carries a fresh SUI balance in MIST.
type balanceMsg struct {
	mist uint64
	err  error
}

type stakeResultMsg struct {
	outcome staking.StakeOutcome
}

type refreshMsg struct {
	err error
}

// EventMsg wraps a bus event forwarded into the program.
type EventMsg struct {
	Event events.Event
}

// LogMsg tells the program that the log buffer has new entries.
type LogMsg struct{}
