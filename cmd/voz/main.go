// Command voz runs the Finança Voice assistant from the terminal: a live
// voice session with tool dispatch into the finance store, plus one-shot
// subcommand-style flags for coaching advice, questions, receipt
// extraction, and CSV export.
//
// Usage:
//
//	voz                       start a voice session
//	voz -advice               print the monthly coaching report
//	voz -ask "question"       ask the adviser about your data
//	voz -receipt photo.jpg    extract a transaction from a receipt image
//	voz -export out.csv       export all transactions as CSV
//
// Environment variables:
//
//	GEMINI_API_KEY  required
//	DATABASE_URL    optional; PostgreSQL DSN, in-memory store if unset
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/finanvoice/voz/internal/dotenv"
	"github.com/finanvoice/voz/pkg/adviser"
	"github.com/finanvoice/voz/pkg/core/finance"
	"github.com/finanvoice/voz/pkg/core/live"
	"github.com/finanvoice/voz/pkg/device"
	"github.com/finanvoice/voz/pkg/store"
)

func main() {
	envFile := flag.String("env", ".env", "env file to load")
	userName := flag.String("user", "você", "user name for the session")
	adviceFlag := flag.Bool("advice", false, "print the monthly coaching report and exit")
	askFlag := flag.String("ask", "", "ask the adviser a question and exit")
	receiptFlag := flag.String("receipt", "", "extract a transaction from a receipt image and exit")
	exportFlag := flag.String("export", "", "export transactions as CSV to the given path and exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if err := dotenv.LoadFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := openStore(ctx, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeStore()

	apiKey := os.Getenv("GEMINI_API_KEY")

	switch {
	case *adviceFlag:
		err = runAdvice(ctx, st, apiKey)
	case *askFlag != "":
		err = runAsk(ctx, st, apiKey, *askFlag)
	case *receiptFlag != "":
		err = runReceipt(ctx, st, apiKey, *receiptFlag)
	case *exportFlag != "":
		err = runExport(ctx, st, *exportFlag)
	default:
		err = runVoice(ctx, cancel, st, apiKey, *userName, log)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore picks PostgreSQL when DATABASE_URL is set, otherwise an
// in-memory store.
func openStore(ctx context.Context, log *zap.Logger) (store.Store, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Info("DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}
	pg, err := store.NewPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func loadSnapshot(ctx context.Context, st store.Store, userName string) (finance.Snapshot, error) {
	transactions, err := st.ListTransactions(ctx)
	if err != nil {
		return finance.Snapshot{}, err
	}
	snapshot := finance.Snapshot{UserName: userName, Transactions: transactions}
	goal, err := st.Goal(ctx)
	if err == nil {
		snapshot.Goal = &goal
	} else if !errors.Is(err, store.ErrNotFound) {
		return finance.Snapshot{}, err
	}
	return snapshot, nil
}

func runVoice(ctx context.Context, cancel context.CancelFunc, st store.Store, apiKey, userName string, log *zap.Logger) error {
	cfg := live.DefaultConfig()
	cfg.APIKey = apiKey

	devices, err := device.Open(device.Config{
		CaptureSampleRate:  cfg.CaptureSampleRate,
		PlaybackSampleRate: cfg.ReceiveSampleRate,
	}, log)
	if err != nil {
		return err
	}
	defer devices.Close()

	quote := finance.DailyWisdom(time.Now())
	fmt.Printf("💡 %s — %s\n\n", quote.Text, quote.Source)

	session := live.NewSession(live.Options{
		Config:  cfg,
		Capture: devices.Microphone(),
		Render:  devices.Speaker(),
		Logger:  log,
		Callbacks: &live.Hooks{
			StatusChange: func(s live.Status) {
				fmt.Printf("● %s\n", s)
			},
			Error: func(message string) {
				fmt.Fprintln(os.Stderr, "⚠ "+message)
			},
			TransactionAdded: func(t finance.Transaction) {
				saved, err := st.SaveTransaction(ctx, t)
				if err != nil {
					log.Error("transaction not saved", zap.Error(err))
					return
				}
				fmt.Printf("%s %s %s: R$ %.2f (%s)\n",
					finance.CategoryIcon(saved.Category), saved.Date, saved.Type, saved.Amount, saved.Description)
			},
			Navigate: func(v live.View) {
				fmt.Printf("→ %s\n", v)
			},
			Logout: func() {
				fmt.Println("Sessão encerrada. Até logo!")
				cancel()
			},
		},
	})

	snapshot, err := loadSnapshot(ctx, st, userName)
	if err != nil {
		return err
	}
	if err := session.Connect(ctx, snapshot); err != nil {
		return err
	}
	defer session.Disconnect()

	fmt.Println("Fale com o assistente. Ctrl+C para sair.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		fmt.Println("\nEncerrando...")
	case <-ctx.Done():
	}
	return nil
}

func runAdvice(ctx context.Context, st store.Store, apiKey string) error {
	adv, err := adviser.New(ctx, apiKey)
	if err != nil {
		return err
	}
	transactions, err := st.ListTransactions(ctx)
	if err != nil {
		return err
	}
	report, err := adv.Advice(ctx, transactions)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func runAsk(ctx context.Context, st store.Store, apiKey, question string) error {
	adv, err := adviser.New(ctx, apiKey)
	if err != nil {
		return err
	}
	transactions, err := st.ListTransactions(ctx)
	if err != nil {
		return err
	}
	answer, err := adv.Ask(ctx, transactions, question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func runReceipt(ctx context.Context, st store.Store, apiKey, path string) error {
	adv, err := adviser.New(ctx, apiKey)
	if err != nil {
		return err
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data, err := adv.AnalyzeReceipt(ctx, image)
	if err != nil {
		return err
	}
	saved, err := st.SaveTransaction(ctx, finance.Transaction{
		Amount:      data.Amount,
		Date:        data.Date,
		Description: data.Description,
		Type:        finance.TransactionType(data.Type),
		Category:    data.Category,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s %s %s: R$ %.2f (%s)\n",
		finance.CategoryIcon(saved.Category), saved.Date, saved.Type, saved.Amount, saved.Description)
	return nil
}

func runExport(ctx context.Context, st store.Store, path string) error {
	transactions, err := st.ListTransactions(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := finance.ExportCSV(f, transactions); err != nil {
		return err
	}
	fmt.Printf("%d transações exportadas para %s\n", len(transactions), path)
	return nil
}
