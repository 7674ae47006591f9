package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"airdrop-go/internal/console"
	"airdrop-go/internal/model"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import projects from the JSON source",
		Long:  `Append every project in the JSON source to the store. Skipped when the store already has projects unless --force is given.`,
		RunE:  runLoad,
	}
	cmd.Flags().String("file", "", "JSON source (defaults to PROJECTS_JSON)")
	cmd.Flags().Bool("force", false, "import even when the store is not empty")
	return cmd
}

func runLoad(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	application, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	file, _ := cmd.Flags().GetString("file")
	force, _ := cmd.Flags().GetBool("force")
	if file == "" {
		file = application.Config.DataFile
	}

	if !force {
		n, err := application.Repo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Printf("Store already holds %d projects. Skipping data loading.\n", n)
			return nil
		}
	}

	summary, err := application.Loader.Load(ctx, file)
	if err != nil {
		return fmt.Errorf("load %s after %d projects: %w", file, summary.Projects, err)
	}
	fmt.Printf("Loaded %d projects and %d requirements.\n", summary.Projects, summary.Requirements)
	return nil
}

func reloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Replace the store contents with the JSON source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			application, _, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				file = application.Config.DataFile
			}

			summary, err := application.Loader.Reload(ctx, file)
			if err != nil {
				return err
			}
			fmt.Printf("Store now holds %d projects and %d requirements.\n", summary.Projects, summary.Requirements)
			return nil
		},
	}
	cmd.Flags().String("file", "", "JSON source (defaults to PROJECTS_JSON)")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about the projects in an interactive session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, log, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Config.RequireModel(); err != nil {
				return err
			}

			summary, loaded, err := application.Loader.LoadIfEmpty(ctx)
			switch {
			case err != nil:
				log.Error("error during loading data to database", "error", err)
				fmt.Println("An error occurred while loading data into the database. Check the logs for details.")
			case loaded:
				fmt.Printf("Data successfully loaded into the database (%d projects).\n", summary.Projects)
			}

			err = console.Run(ctx, os.Stdin, os.Stdout, application.Assistant)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, plus the Telegram bot and scheduled refresh when configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, log, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Config.RequireModel(); err != nil {
				log.Warn("questions will not be answered", "error", err)
			}
			if _, _, err := application.Loader.LoadIfEmpty(ctx); err != nil {
				log.Error("initial import failed", "error", err)
			}

			return application.Run(ctx)
		},
	}
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Query stored projects",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List project names in store order",
			Args:  cobra.NoArgs,
			RunE: withCatalog(func(ctx context.Context, c catalogReader, _ []string) error {
				names, err := c.ListProjectNames(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Show one project",
			Args:  cobra.ExactArgs(1),
			RunE: withCatalog(func(ctx context.Context, c catalogReader, args []string) error {
				project, err := c.GetProjectInfo(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(project)
			}),
		},
		&cobra.Command{
			Use:   "requirements <name>",
			Short: "List a project's requirements",
			Args:  cobra.ExactArgs(1),
			RunE: withCatalog(func(ctx context.Context, c catalogReader, args []string) error {
				reqs, err := c.GetRequirements(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TASK\tDIFFICULTY\tDEADLINE")
				for _, r := range reqs {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Task, r.Difficulty, r.Deadline)
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "search <column> <value>",
			Short: "Substring search on one project column",
			Args:  cobra.ExactArgs(2),
			RunE: withCatalog(func(ctx context.Context, c catalogReader, args []string) error {
				projects, err := c.Search(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("%w (columns: %v)", err, model.SearchColumns())
				}
				return printProjects(projects)
			}),
		},
		&cobra.Command{
			Use:   "status <status>",
			Short: "List projects with an exact status",
			Args:  cobra.ExactArgs(1),
			RunE: withCatalog(func(ctx context.Context, c catalogReader, args []string) error {
				projects, err := c.FilterByStatus(ctx, args[0])
				if err != nil {
					return err
				}
				return printProjects(projects)
			}),
		},
		&cobra.Command{
			Use:   "groups",
			Short: "Group projects by status",
			Args:  cobra.NoArgs,
			RunE: withCatalog(func(ctx context.Context, c catalogReader, _ []string) error {
				groups, err := c.GroupByStatus(ctx)
				if err != nil {
					return err
				}
				statuses := make([]string, 0, len(groups))
				for status := range groups {
					statuses = append(statuses, status)
				}
				sort.Strings(statuses)
				for _, status := range statuses {
					fmt.Printf("%s:\n", status)
					for _, p := range groups[status] {
						fmt.Printf("  %s\n", p.ProjectName)
					}
				}
				return nil
			}),
		},
	)
	return cmd
}

type catalogReader interface {
	ListProjectNames(ctx context.Context) ([]string, error)
	GetProjectInfo(ctx context.Context, name string) (model.Project, error)
	GetRequirements(ctx context.Context, name string) ([]model.Requirement, error)
	Search(ctx context.Context, column, value string) ([]model.Project, error)
	FilterByStatus(ctx context.Context, status string) ([]model.Project, error)
	GroupByStatus(ctx context.Context) (map[string][]model.Project, error)
}

func withCatalog(fn func(ctx context.Context, c catalogReader, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		application, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer application.Close()
		return fn(ctx, application.Catalog, args)
	}
}

func printProjects(projects []model.Project) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tREWARD\tUPDATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ProjectName, p.Status, p.RewardsAmount, p.LastUpdated)
	}
	return w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
