package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/revise-app/revise/internal/fsrs"
	"github.com/revise-app/revise/internal/store"
	"github.com/spf13/cobra"
)

// openDB is a helper that opens the database for CLI commands.
func openDB() (*store.DB, error) {
	dbPath := os.Getenv("REVISE_DB")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

func loadConfig(db *store.DB) (fsrs.Config, error) {
	raw, err := db.LoadSchedulerConfig()
	if err != nil {
		return fsrs.Config{}, err
	}
	return fsrs.NormalizeConfig(raw), nil
}

func parseRating(s string) (fsrs.Rating, error) {
	switch strings.ToLower(s) {
	case "1", "again":
		return fsrs.Again, nil
	case "2", "hard":
		return fsrs.Hard, nil
	case "3", "good":
		return fsrs.Good, nil
	case "4", "easy":
		return fsrs.Easy, nil
	}
	return 0, fmt.Errorf("rating must be 1-4 or again/hard/good/easy, got %q", s)
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// --- add command ---

var addNotes string

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subject or topic",
}

var addSubjectCmd = &cobra.Command{
	Use:   "subject [name]",
	Short: "Add a subject",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		s, err := db.CreateSubject(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("added subject %q (%s)\n", s.Name, s.ID)
		return nil
	},
}

var addTopicCmd = &cobra.Command{
	Use:   "topic [subject-id] [name]",
	Short: "Add a topic under a subject",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		subject, err := db.GetSubject(args[0])
		if err != nil {
			return err
		}
		if subject == nil {
			return fmt.Errorf("subject %s not found", args[0])
		}

		topic, err := db.CreateTopic(subject.ID, strings.Join(args[1:], " "), addNotes)
		if err != nil {
			return err
		}
		fmt.Printf("added topic %q under %q (%s)\n", topic.Name, subject.Name, topic.ID)
		return nil
	},
}

// --- list command ---

var listCmd = &cobra.Command{
	Use:   "list [subject-id]",
	Short: "List subjects, or topics of one subject",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if len(args) == 0 {
			subjects, err := db.ListSubjects()
			if err != nil {
				return err
			}
			for _, s := range subjects {
				topics, err := db.ListTopics(s.ID)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s (%d topics)\n", s.ID, s.Name, len(topics))
			}
			return nil
		}

		topics, err := db.ListTopics(args[0])
		if err != nil {
			return err
		}
		for i := range topics {
			printTopicLine(&topics[i], time.Time{})
		}
		return nil
	},
}

func printTopicLine(t *store.Topic, today time.Time) {
	status := fsrs.ReviewStatus(t.State().NextReview, today)
	line := fmt.Sprintf("%s  %s — %s", t.ID, t.Name, status.Text)
	if t.State().Reviewed() {
		line += fmt.Sprintf(" (%s, stability %.1fd)", fsrs.DifficultyLabel(t.Difficulty), t.Stability)
	}
	fmt.Println(line)
}

// --- due command ---

var dueDate string

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List topics due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		today, err := parseDateFlag(dueDate)
		if err != nil {
			return err
		}
		if today.IsZero() {
			today = fsrs.Today()
		}

		due, err := db.ListDueTopics(today.Format("2006-01-02"))
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("nothing due — all caught up")
			return nil
		}
		for i := range due {
			printTopicLine(&due[i], today)
		}
		return nil
	},
}

// --- review command ---

var (
	reviewDate    string
	reviewElapsed int
	reviewFuzz    bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [topic-id] [rating]",
	Short: "Record a review and reschedule the topic",
	Long:  "Record a rated review (1=again 2=hard 3=good 4=easy) and print the new schedule.",
	Args:  cobra.ExactArgs(2),
	RunE:  runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	rating, err := parseRating(args[1])
	if err != nil {
		return err
	}
	today, err := parseDateFlag(reviewDate)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	topic, err := db.GetTopic(args[0])
	if err != nil {
		return err
	}
	if topic == nil {
		return fmt.Errorf("topic %s not found", args[0])
	}

	cfg, err := loadConfig(db)
	if err != nil {
		return err
	}

	opts := fsrs.Options{ApplyFuzzing: reviewFuzz, Today: today}
	if cmd.Flags().Changed("elapsed") {
		opts.CustomElapsedDays = &reviewElapsed
	}

	before := topic.State()
	res := fsrs.Review(before, rating, cfg, opts)

	entry := &store.ReviewEntry{
		ReviewedOn:       res.NewState.LastReview.Format("2006-01-02"),
		Rating:           int(rating),
		RatingLabel:      rating.Label(),
		DifficultyBefore: before.Difficulty,
		DifficultyAfter:  res.NewState.Difficulty,
		StabilityBefore:  before.Stability,
		StabilityAfter:   res.NewState.Stability,
		IntervalDays:     res.IntervalDays,
		Retrievability:   res.Retrievability,
		Algorithm:        cfg.Version.String(),
		Retention:        cfg.RequestedRetention,
	}
	if err := db.RecordReview(topic.ID, res.NewState, entry); err != nil {
		return err
	}

	fmt.Printf("%s rated %s (review #%d)\n", topic.Name, rating.Label(), entry.ReviewNumber)
	fmt.Printf("  next review: %s (%d days)\n",
		res.NewState.NextReview.Format("2006-01-02"), res.ScheduledDays)
	fmt.Printf("  difficulty:  %.2f (%s)\n",
		res.NewState.Difficulty, fsrs.DifficultyLabel(res.NewState.Difficulty))
	fmt.Printf("  stability:   %.2f days\n", res.NewState.Stability)
	if res.Retrievability != nil {
		fmt.Printf("  recall odds at review: %.0f%%\n", *res.Retrievability*100)
	}
	return nil
}

// --- preview command ---

var previewDate string

var previewCmd = &cobra.Command{
	Use:   "preview [topic-id]",
	Short: "Show what each rating would schedule, without recording anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := parseDateFlag(previewDate)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		topic, err := db.GetTopic(args[0])
		if err != nil {
			return err
		}
		if topic == nil {
			return fmt.Errorf("topic %s not found", args[0])
		}

		cfg, err := loadConfig(db)
		if err != nil {
			return err
		}

		fmt.Printf("%s — if reviewed today:\n", topic.Name)
		for _, o := range fsrs.PreviewAllRatings(topic.State(), cfg, fsrs.Options{Today: today}) {
			fmt.Printf("  %-5s -> %3d days (difficulty %.2f, stability %.2f)\n",
				o.Label, o.IntervalDays, o.NewState.Difficulty, o.NewState.Stability)
		}
		return nil
	},
}

// --- config command ---

var (
	configAlgo        string
	configRetention   float64
	configMaxInterval int
	configAgainMin    int
	configWeights     string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change scheduler settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored and effective scheduler settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		raw, err := db.LoadSchedulerConfig()
		if err != nil {
			return err
		}
		eff := fsrs.NormalizeConfig(raw)

		fmt.Printf("algorithm:    %s\n", eff.Version)
		fmt.Printf("retention:    %.3f\n", eff.RequestedRetention)
		fmt.Printf("max interval: %d days\n", eff.MaxIntervalDays)
		fmt.Printf("again floor:  %d days\n", eff.AgainMinIntervalDays)
		if eff.CustomWeights != nil {
			fmt.Printf("weights:      custom (%d)\n", len(eff.CustomWeights))
		} else {
			fmt.Printf("weights:      %s defaults\n", eff.Version)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change scheduler settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		raw, err := db.LoadSchedulerConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("algorithm") {
			raw.Version = configAlgo
		}
		if cmd.Flags().Changed("retention") {
			raw.RequestedRetention = configRetention
		}
		if cmd.Flags().Changed("max-interval") {
			raw.MaxIntervalDays = configMaxInterval
		}
		if cmd.Flags().Changed("again-min") {
			raw.AgainMinIntervalDays = configAgainMin
		}
		if cmd.Flags().Changed("weights") {
			raw.CustomWeights = nil
			if configWeights != "" {
				for _, part := range strings.Split(configWeights, ",") {
					w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
					if err != nil {
						return fmt.Errorf("bad weight %q: %w", part, err)
					}
					raw.CustomWeights = append(raw.CustomWeights, w)
				}
			}
		}

		if err := db.SaveSchedulerConfig(raw); err != nil {
			return err
		}

		eff := fsrs.NormalizeConfig(raw)
		fmt.Printf("saved — effective: %s, retention %.3f\n", eff.Version, eff.RequestedRetention)
		if raw.CustomWeights != nil && eff.CustomWeights == nil {
			fmt.Printf("note: custom weights ignored (need %d finite values for %s)\n",
				eff.Version.Arity(), eff.Version)
		}
		return nil
	},
}

func init() {
	addCmd.AddCommand(addSubjectCmd)
	addCmd.AddCommand(addTopicCmd)
	addTopicCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes for the topic")

	dueCmd.Flags().StringVar(&dueDate, "date", "", "Treat this date (YYYY-MM-DD) as today")

	reviewCmd.Flags().StringVar(&reviewDate, "date", "", "Record the review as of this date (YYYY-MM-DD)")
	reviewCmd.Flags().IntVar(&reviewElapsed, "elapsed", 0, "Override elapsed days since the last review")
	reviewCmd.Flags().BoolVar(&reviewFuzz, "fuzz", false, "Jitter the scheduled interval")

	previewCmd.Flags().StringVar(&previewDate, "date", "", "Preview as of this date (YYYY-MM-DD)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringVar(&configAlgo, "algorithm", "", "Scheduler version (fsrs5 or fsrs6)")
	configSetCmd.Flags().Float64Var(&configRetention, "retention", 0, "Target recall probability (0.01-0.999)")
	configSetCmd.Flags().IntVar(&configMaxInterval, "max-interval", 0, "Maximum interval in days")
	configSetCmd.Flags().IntVar(&configAgainMin, "again-min", 0, "Minimum interval for Again ratings")
	configSetCmd.Flags().StringVar(&configWeights, "weights", "", "Comma-separated custom weight vector (empty clears)")
}
