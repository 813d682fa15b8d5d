package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/arenlabs/aren/internal/adapter/postgres"
	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/systeminfo"
	"github.com/arenlabs/aren/internal/domain/task"
)

// runAdmin dispatches admin subcommands (list-users, list-tasks, add-task,
// complete-task, responses, seed-identity, set-fact).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "list-users":
		return runAdminListUsers(args[1:])
	case "list-tasks":
		return runAdminListTasks(args[1:])
	case "add-task":
		return runAdminAddTask(args[1:])
	case "complete-task":
		return runAdminCompleteTask(args[1:])
	case "responses":
		return runAdminResponses(args[1:])
	case "seed-identity":
		return runAdminSeedIdentity(args[1:])
	case "set-fact":
		return runAdminSetFact(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: aren admin <command> [options]

Commands:
  list-users       List all known devices
  list-tasks       List pending tasks for a device
  add-task         Add a task for a device
  complete-task    Mark a task done by ID
  responses        Show stored responses for an exact prompt
  seed-identity    Re-apply the default identity facts
  set-fact         Set or update one identity fact
  help             Show this help message

Examples:
  aren admin list-users
  aren admin list-tasks --device phone-1
  aren admin add-task --device phone-1 --description "pay rent" --priority 3 --due 2026-09-01T09:00:00Z
  aren admin complete-task --id 42
  aren admin responses --device phone-1 --prompt "what time is it"
  aren admin set-fact --key owner_city --value Mumbai
`)
}

func loadAdminStore() (*postgres.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return postgres.NewStore(pool), pool.Close, nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	users, err := store.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDEVICE\tNAME\tCREATED")
	for i := range users {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			users[i].ID, users[i].DeviceID, users[i].Name, users[i].CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runAdminListTasks(args []string) error {
	fs := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	device := fs.String("device", "default_user", "device ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	u, err := store.GetUserByDevice(ctx, *device)
	if err != nil {
		return fmt.Errorf("lookup device %q: %w", *device, err)
	}

	tasks, err := store.PendingTasks(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("No pending tasks.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPRIORITY\tDUE\tDESCRIPTION")
	for i := range tasks {
		due := "-"
		if tasks[i].DueDate != nil {
			due = tasks[i].DueDate.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", tasks[i].ID, tasks[i].Priority, due, tasks[i].Description)
	}
	return w.Flush()
}

func runAdminAddTask(args []string) error {
	fs := flag.NewFlagSet("add-task", flag.ContinueOnError)
	device := fs.String("device", "default_user", "device ID")
	description := fs.String("description", "", "task description (required)")
	priority := fs.Int("priority", task.PriorityLow, "priority: 1 low, 2 medium, 3 high")
	due := fs.String("due", "", "due date, RFC 3339")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *description == "" {
		return fmt.Errorf("--description is required")
	}

	var dueAt *time.Time
	if *due != "" {
		t, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			return fmt.Errorf("--due must be RFC 3339: %w", err)
		}
		dueAt = &t
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	u, err := store.EnsureUser(ctx, *device)
	if err != nil {
		return fmt.Errorf("ensure device %q: %w", *device, err)
	}

	created, err := store.CreateTask(ctx, task.CreateRequest{
		UserID:      u.ID,
		Description: *description,
		Priority:    *priority,
		DueDate:     dueAt,
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Task created: %d (%s)\n", created.ID, created.Description)
	return nil
}

func runAdminCompleteTask(args []string) error {
	fs := flag.NewFlagSet("complete-task", flag.ContinueOnError)
	id := fs.Int64("id", 0, "task ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == 0 {
		return fmt.Errorf("--id is required")
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.CompleteTask(context.Background(), *id); err != nil {
		return fmt.Errorf("complete task %d: %w", *id, err)
	}

	fmt.Fprintf(os.Stderr, "Task %d completed\n", *id)
	return nil
}

func runAdminResponses(args []string) error {
	fs := flag.NewFlagSet("responses", flag.ContinueOnError)
	device := fs.String("device", "default_user", "device ID")
	prompt := fs.String("prompt", "", "exact prompt text (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *prompt == "" {
		return fmt.Errorf("--prompt is required")
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	u, err := store.GetUserByDevice(ctx, *device)
	if err != nil {
		return fmt.Errorf("lookup device %q: %w", *device, err)
	}

	responses, err := store.ResponsesForPrompt(ctx, u.ID, *prompt)
	if err != nil {
		return fmt.Errorf("list responses: %w", err)
	}

	if len(responses) == 0 {
		fmt.Println("No stored responses for that prompt.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSED\tLAST USED\tRESPONSE")
	for i := range responses {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\n",
			responses[i].ID, responses[i].UsedCount, responses[i].LastUsed.Format(time.RFC3339), responses[i].Text)
	}
	return w.Flush()
}

func runAdminSeedIdentity(args []string) error {
	fs := flag.NewFlagSet("seed-identity", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	for _, fact := range systeminfo.Defaults() {
		if err := store.UpsertFact(ctx, fact); err != nil {
			return fmt.Errorf("seed fact %q: %w", fact.Key, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Seeded %d identity facts\n", len(systeminfo.Defaults()))
	return nil
}

func runAdminSetFact(args []string) error {
	fs := flag.NewFlagSet("set-fact", flag.ContinueOnError)
	key := fs.String("key", "", "fact key (required)")
	value := fs.String("value", "", "fact value (required)")
	category := fs.String("category", systeminfo.CategorySystem, "fact category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *key == "" {
		return fmt.Errorf("--key is required")
	}
	if *value == "" {
		return fmt.Errorf("--value is required")
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	fact := systeminfo.Fact{Key: *key, Value: *value, Category: *category}
	if err := store.UpsertFact(context.Background(), fact); err != nil {
		return fmt.Errorf("set fact %q: %w", *key, err)
	}

	fmt.Fprintf(os.Stderr, "Fact %q set\n", *key)
	return nil
}
