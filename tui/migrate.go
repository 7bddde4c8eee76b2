// Package tui implements the terminal confirmation flow for migrating local
// data to the remote store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"notevault/models"
)

// Migrator is the part of the store the migration screen drives.
type Migrator interface {
	PrepareMigration() (models.MigrationPlan, error)
	Migrate(ctx context.Context, token string) (models.MigrationResult, error)
}

// Stage is the step the migration screen is on.
type Stage int

const (
	StagePreparing Stage = iota
	StageConfirm
	StageMigrating
	StageDone
	StageCancelled
	StageFailed
)

type planMsg struct {
	plan models.MigrationPlan
	err  error
}

type resultMsg struct {
	result models.MigrationResult
	err    error
}

// MigrateModel asks for confirmation, then runs the migration behind a spinner.
type MigrateModel struct {
	migrator Migrator
	ctx      context.Context
	timeout  time.Duration

	Stage   Stage
	Plan    models.MigrationPlan
	Result  models.MigrationResult
	Err     error
	Spinner spinner.Model
}

// NewMigrateModel creates the screen. timeout bounds the remote commit.
func NewMigrateModel(ctx context.Context, m Migrator, timeout time.Duration) MigrateModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = countStyle
	return MigrateModel{
		migrator: m,
		ctx:      ctx,
		timeout:  timeout,
		Stage:    StagePreparing,
		Spinner:  sp,
	}
}

func (m MigrateModel) Init() tea.Cmd {
	return m.prepare
}

func (m MigrateModel) prepare() tea.Msg {
	plan, err := m.migrator.PrepareMigration()
	return planMsg{plan: plan, err: err}
}

func (m MigrateModel) migrate(token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		res, err := m.migrator.Migrate(ctx, token)
		return resultMsg{result: res, err: err}
	}
}

func (m MigrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.Stage == StageMigrating {
				// Ignored while the commit is in flight.
				return m, nil
			}
			m.Stage = StageCancelled
			return m, tea.Quit
		}
		return m.handleKey(msg.String())

	case planMsg:
		if msg.err != nil {
			m.Stage = StageFailed
			m.Err = msg.err
			return m, tea.Quit
		}
		m.Plan = msg.plan
		m.Stage = StageConfirm
		return m, nil

	case resultMsg:
		m.Result = msg.result
		m.Err = msg.err
		if msg.err != nil {
			m.Stage = StageFailed
		} else {
			m.Stage = StageDone
		}
		return m, tea.Quit

	case spinner.TickMsg:
		if m.Stage != StageMigrating {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m MigrateModel) handleKey(key string) (tea.Model, tea.Cmd) {
	if m.Stage != StageConfirm {
		return m, nil
	}
	switch key {
	case "y", "Y":
		m.Stage = StageMigrating
		return m, tea.Batch(m.Spinner.Tick, m.migrate(m.Plan.Token))
	case "n", "N", "q", "esc":
		m.Stage = StageCancelled
		return m, tea.Quit
	}
	return m, nil
}

func (m MigrateModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("NoteVault migration"))
	b.WriteString("\n")

	switch m.Stage {
	case StagePreparing:
		b.WriteString("Waiting for the remote store...")
	case StageConfirm:
		fmt.Fprintf(&b, "Upload %s modules and %s notes to the remote store?\n",
			countStyle.Render(fmt.Sprint(m.Plan.Categories)),
			countStyle.Render(fmt.Sprint(m.Plan.Notes)))
		b.WriteString("Local copies are removed only after the upload is confirmed.")
		b.WriteString(helpStyle.Render("\ny confirm • n cancel"))
	case StageMigrating:
		b.WriteString(m.Spinner.View())
		b.WriteString(" Migrating...")
	case StageDone:
		if m.Result.NothingToMigrate {
			b.WriteString(successStyle.Render("Nothing to migrate."))
		} else {
			b.WriteString(successStyle.Render(fmt.Sprintf("Migrated %d records.", m.Result.Committed)))
		}
	case StageCancelled:
		b.WriteString("Migration cancelled. Nothing was changed.")
	case StageFailed:
		b.WriteString(errorStyle.Render(failureText(m.Err)))
	}
	b.WriteString("\n")
	return appStyle.Render(b.String())
}

func failureText(err error) string {
	var migErr *models.MigrationError
	switch {
	case errors.As(err, &migErr) && migErr.Phase == models.MigrationPhaseClearLocal:
		return "Data was uploaded but local copies could not be removed: " + migErr.Err.Error()
	case errors.As(err, &migErr):
		return "Upload failed, local data kept: " + migErr.Err.Error()
	case errors.Is(err, models.ErrNotSynced):
		return "The remote store has not answered yet. Try again."
	case err != nil:
		return "Migration failed: " + err.Error()
	}
	return "Migration failed."
}

// RunMigrate runs the migration screen until it finishes and returns the
// final model state.
func RunMigrate(ctx context.Context, m Migrator, timeout time.Duration) (MigrateModel, error) {
	final, err := tea.NewProgram(NewMigrateModel(ctx, m, timeout), tea.WithContext(ctx)).Run()
	if err != nil {
		return MigrateModel{}, err
	}
	return final.(MigrateModel), nil
}
