// Package e2e declares the browser scenarios run against the todo app.
package e2e

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkoosis/tcr/internal/collect/browser"
)

// BulkCount is how many tasks the round-trip scenario creates.
const BulkCount = 10

// Suite returns the scenarios in the order they run.
func Suite() *browser.Suite {
	return browser.NewSuite("TodoListE2E").
		Add(browser.Scenario{
			Name:   "create_and_delete_tasks_restores_count",
			CaseID: "TC016",
			Run:    createAndDeleteRestoresCount,
		}).
		Add(browser.Scenario{
			Name:   "delete_last_keeps_earlier_task",
			CaseID: "TC017",
			Run:    deleteLastKeepsEarlier,
		})
}

// uniqueTitle keeps reruns against a persistent database from colliding.
func uniqueTitle(prefix string) string {
	return prefix + " " + uuid.NewString()[:8]
}

func createAndDeleteRestoresCount(_ context.Context, p browser.Page) error {
	if err := p.Home(); err != nil {
		return err
	}
	initial, err := p.CountTasks()
	if err != nil {
		return err
	}

	for i := 0; i < BulkCount; i++ {
		if err := p.CreateTask(uniqueTitle("bulk")); err != nil {
			return err
		}
	}
	after, err := p.CountTasks()
	if err != nil {
		return err
	}
	if after != initial+BulkCount {
		return browser.Failf("after creating %d tasks: want %d rows, got %d", BulkCount, initial+BulkCount, after)
	}

	for i := 0; i < BulkCount; i++ {
		if err := p.DeleteLastTask(); err != nil {
			return err
		}
	}
	final, err := p.CountTasks()
	if err != nil {
		return err
	}
	if final != initial {
		return browser.Failf("after deleting %d tasks: want %d rows, got %d", BulkCount, initial, final)
	}
	return nil
}

func deleteLastKeepsEarlier(_ context.Context, p browser.Page) error {
	if err := p.Home(); err != nil {
		return err
	}
	first, second := uniqueTitle("first"), uniqueTitle("second")
	for _, title := range []string{first, second} {
		if err := p.CreateTask(title); err != nil {
			return err
		}
	}
	if err := p.DeleteLastTask(); err != nil {
		return err
	}

	if ok, err := p.HasText(first); err != nil {
		return err
	} else if !ok {
		return browser.Failf("task %q disappeared after deleting the last task", first)
	}
	if ok, err := p.HasText(second); err != nil {
		return err
	} else if ok {
		return browser.Failf("task %q still listed after delete", second)
	}
	return nil
}
