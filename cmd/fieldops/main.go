package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrovira/fieldops/internal/checklist"
	"github.com/mrovira/fieldops/internal/events"
	"github.com/mrovira/fieldops/internal/inventory"
	"github.com/mrovira/fieldops/internal/model"
	"github.com/mrovira/fieldops/internal/photo"
	"github.com/mrovira/fieldops/internal/repo"
	"github.com/mrovira/fieldops/internal/store"
	"github.com/mrovira/fieldops/internal/workorder"
	"github.com/mrovira/fieldops/templates"
)

const version = "1.0.0"

const configFile = "fieldops.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "templates":
		runTemplates(os.Args[2:])
	case "inventory":
		runInventory(os.Args[2:])
	case "photos":
		runPhotos(os.Args[2:])
	case "state":
		runState(os.Args[2:])
	case "demo":
		runDemo(os.Args[2:])
	case "version":
		fmt.Printf("fieldops %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: fieldops <command> [options]

commands:
  templates list [--json]        list registered checklist templates
  templates validate <dir>       validate the template YAML files in a directory
  templates watch <dir>          watch a template directory and hot-reload it
  inventory report <seed.yaml> [--json]
                                 replay a catalog/purchase seed file and print stock
  photos encode <file>...        re-encode photos as JPEG data URLs
  state inspect <state.yaml>     summarize a saved state snapshot
  demo [--state <file>]          run a scripted work-order completion
  version                        print the version
`)
}

// loadConfig reads fieldops.yaml from the working directory, falling back to
// the embedded default configuration.
func loadConfig() (model.Config, error) {
	var cfg model.Config

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		data, err = templates.FS.ReadFile("config.yaml")
	}
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func newLogger(cfg model.Config) *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

func runTemplates(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops templates <list|validate|watch> [options]")
		os.Exit(1)
	}
	switch args[0] {
	case "list":
		runTemplatesList(args[1:])
	case "validate":
		runTemplatesValidate(args[1:])
	case "watch":
		runTemplatesWatch(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown templates subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "usage: fieldops templates <list|validate|watch> [options]")
		os.Exit(1)
	}
}

func runTemplatesList(args []string) {
	jsonOutput := false
	for _, a := range args {
		switch a {
		case "--json":
			jsonOutput = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: fieldops templates list [--json]\n", a)
			os.Exit(1)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	tpls, err := checklist.LoadAll(cfg.Templates.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load templates: %v\n", err)
		os.Exit(1)
	}
	registry, err := checklist.NewRegistry(tpls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register templates: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		type row struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Fields int    `json:"fields"`
		}
		var rows []row
		for _, t := range registry.Templates() {
			rows = append(rows, row{ID: t.ID, Name: t.Name, Fields: len(t.Fields)})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for _, t := range registry.Templates() {
		fmt.Printf("%-18s %-40s %d fields\n", t.ID, t.Name, len(t.Fields))
	}
}

func runTemplatesValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops templates validate <dir>")
		os.Exit(1)
	}
	tpls, err := checklist.LoadDir(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	if _, err := checklist.NewRegistry(tpls); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d template(s) OK\n", len(tpls))
}

func runTemplatesWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops templates watch <dir>")
		os.Exit(1)
	}
	dir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	tpls, err := checklist.LoadAll(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load templates: %v\n", err)
		os.Exit(1)
	}
	registry, err := checklist.NewRegistry(tpls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register templates: %v\n", err)
		os.Exit(1)
	}

	debounce := time.Duration(cfg.Templates.WatchDebounceSec * float64(time.Second))
	watcher := checklist.NewWatcher(registry, dir, debounce, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
	logger.Printf("INFO watching %s (%d templates loaded)", dir, len(registry.Templates()))
	<-ctx.Done()
	watcher.Stop()
}

// inventorySeed is the YAML shape accepted by `inventory report`.
type inventorySeed struct {
	Catalog   []model.MaterialCatalogItem `yaml:"catalog"`
	Purchases []model.Purchase            `yaml:"purchases"`
	Usages    []model.MaterialUsage       `yaml:"usages"`
}

func runInventory(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops inventory <report> [options]")
		os.Exit(1)
	}
	switch args[0] {
	case "report":
		runInventoryReport(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown inventory subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "usage: fieldops inventory report <seed.yaml> [--json]")
		os.Exit(1)
	}
}

func runInventoryReport(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops inventory report <seed.yaml> [--json]")
		os.Exit(1)
	}
	seedPath := args[0]
	jsonOutput := false
	for _, a := range args[1:] {
		switch a {
		case "--json":
			jsonOutput = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: fieldops inventory report <seed.yaml> [--json]\n", a)
			os.Exit(1)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	data, err := os.ReadFile(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read seed: %v\n", err)
		os.Exit(1)
	}
	var seed inventorySeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		fmt.Fprintf(os.Stderr, "parse seed: %v\n", err)
		os.Exit(1)
	}

	ledger := inventory.New(logger, nil, cfg.Inventory.WarnBelow)
	for _, item := range seed.Catalog {
		if err := ledger.AddCatalogItem(item); err != nil {
			fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
			os.Exit(1)
		}
	}
	for _, p := range seed.Purchases {
		if _, err := ledger.RecordPurchase(p); err != nil {
			fmt.Fprintf(os.Stderr, "purchase: %v\n", err)
			os.Exit(1)
		}
	}
	ledger.DebitUsages(seed.Usages)

	snapshot := ledger.Snapshot()
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}
	for _, item := range snapshot {
		name := item.MaterialID
		if cat, ok := ledger.CatalogItem(item.MaterialID); ok {
			name = cat.Name
		}
		fmt.Printf("%-14s %-32s %d\n", item.MaterialID, name, item.Stock)
	}
}

func runPhotos(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops photos encode <file>...")
		os.Exit(1)
	}
	switch args[0] {
	case "encode":
		runPhotosEncode(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown photos subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "usage: fieldops photos encode <file>...")
		os.Exit(1)
	}
}

func runPhotosEncode(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops photos encode <file>...")
		os.Exit(1)
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	proc := photo.NewProcessor(cfg.Photos.JPEGQuality, cfg.Photos.MaxConcurrent, logger)
	urls, err := proc.ProcessFiles(context.Background(), args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	for i, url := range urls {
		fmt.Printf("%s\t%d bytes\n", args[i], len(url))
	}
}

func runState(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops state <inspect> [options]")
		os.Exit(1)
	}
	switch args[0] {
	case "inspect":
		runStateInspect(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown state subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "usage: fieldops state inspect <state.yaml>")
		os.Exit(1)
	}
}

func runStateInspect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fieldops state inspect <state.yaml>")
		os.Exit(1)
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	state, err := store.Load(args[0], newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load state: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("saved at:   %s\n", state.SavedAt.Format(time.RFC3339))
	fmt.Printf("tasks:      %d\n", len(state.Tasks))
	fmt.Printf("stores:     %d\n", len(state.Stores))
	fmt.Printf("equipment:  %d\n", len(state.Equipment))
	fmt.Printf("users:      %d\n", len(state.Users))
	fmt.Printf("tools:      %d\n", len(state.Tools))
	fmt.Printf("catalog:    %d\n", len(state.Catalog))
	fmt.Printf("inventory:  %d item(s)\n", len(state.Inventory))
	fmt.Printf("purchases:  %d\n", len(state.Purchases))

	completed := 0
	for _, task := range state.Tasks {
		if task.Status == model.TaskStatusCompleted {
			completed++
		}
	}
	fmt.Printf("completed:  %d of %d task(s)\n", completed, len(state.Tasks))
}

// runDemo walks one preventive-maintenance order through its full lifecycle:
// create, verify the equipment, start, fill the checklist, complete, and
// show the resulting stock deduction.
func runDemo(args []string) {
	var statePath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--state":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--state requires a value")
				os.Exit(1)
			}
			i++
			statePath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: fieldops demo [--state <file>]\n", args[i])
			os.Exit(1)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	tpls, err := checklist.LoadAll(cfg.Templates.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load templates: %v\n", err)
		os.Exit(1)
	}
	registry, err := checklist.NewRegistry(tpls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register templates: %v\n", err)
		os.Exit(1)
	}

	bus := events.NewBus(16)
	defer bus.Close()
	bus.Subscribe(events.EventStockDebited, func(e events.Event) {
		logger.Printf("INFO event %s: %v", e.Type, e.Data)
	})

	audit, err := events.NewAuditLogger(cfg.Audit.Path, cfg.Audit.MaxSizeBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit log: %v\n", err)
		os.Exit(1)
	}
	defer audit.Close()

	ledger := inventory.New(logger, bus, cfg.Inventory.WarnBelow)
	mustNil := func(err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "demo: %v\n", err)
			os.Exit(1)
		}
	}
	mustNil(ledger.AddCatalogItem(model.MaterialCatalogItem{ID: "FIL-G4", Name: "Filtro G4", Unit: "unidad"}))
	mustNil(ledger.AddCatalogItem(model.MaterialCatalogItem{ID: "GAS-R410", Name: "Gas R410A", Unit: "kg"}))
	mustNil(ledger.Credit("FIL-G4", 10))
	mustNil(ledger.Credit("GAS-R410", 5))

	stores := repo.NewStoreRepo()
	equipment := repo.NewEquipmentRepo()
	mustNil(stores.Put(model.Store{ID: "store_demo", Name: "Sucursal Centro", City: "Montevideo"}))
	mustNil(equipment.Put(model.Equipment{ID: "eq_demo_aa01", Name: "Aire acondicionado salón", StoreID: "store_demo", ServiceType: "aire_acondicionado"}))

	tasks := repo.NewTaskRepo(logger, ledger, bus, audit)
	task, err := tasks.Create(model.Task{
		Title:         "Mantenimiento preventivo de Aire Acondicionado",
		StoreID:       "store_demo",
		EquipmentID:   "eq_demo_aa01",
		TechnicianID:  "user_demo_tech",
		ScheduledDate: time.Now(),
		ServiceType:   "aire_acondicionado",
	})
	mustNil(err)
	fmt.Printf("created %s (%s)\n", task.OSNumber, task.ID)

	session, err := workorder.NewSession(task.ID, tasks, registry, bus, audit, logger)
	mustNil(err)
	mustNil(session.VerifyScan("eq_demo_aa01"))
	mustNil(session.Start())
	fmt.Printf("started: status=%s verify=%s\n", session.Task().Status, session.Verifier().Method())

	mustNil(session.SetAnswer("energizadoSinAlarmas", true))
	mustNil(session.SetAnswer("tempSuministro", "14.5"))
	mustNil(session.SetAnswer("tempRetorno", "22.5"))
	mustNil(session.SetAnswer("estadoFiltros", "Reemplazado"))
	mustNil(session.SetAnswer("limpiezaSerpentinInt", true))
	mustNil(session.SetAnswer("limpiezaSerpentinExt", true))
	mustNil(session.SetAnswer("verificacionDrenaje", true))
	mustNil(session.SetAnswer("conexionesElectricas", "OK"))
	mustNil(session.SetAnswer("usedMaterials", true))
	mustNil(session.SetAnswer("materials", []model.SubtableRow{
		{"materialId": "FIL-G4", "quantity": "2"},
	}))
	mustNil(session.SetAnswer("fotosAntesDespues", []string{
		"data:image/jpeg;base64,demoA",
		"data:image/jpeg;base64,demoB",
	}))
	mustNil(session.SetAnswer("firmaResponsable", "Encargado de local"))

	if delta, ok := session.Answers().String("deltaT"); ok {
		fmt.Printf("deltaT=%s\n", delta)
	}

	if g := session.CanComplete(); !g.OK {
		fmt.Fprintf(os.Stderr, "demo checklist incomplete: %v\n", g.Reasons)
		os.Exit(1)
	}
	mustNil(session.Complete())

	done, err := tasks.Get(task.ID)
	mustNil(err)
	fmt.Printf("completed %s: status=%s materials=%v\n", done.OSNumber, done.Status, done.Materials)
	if stock, ok := ledger.Stock("FIL-G4"); ok {
		fmt.Printf("stock FIL-G4=%d\n", stock)
	}
	fmt.Printf("audit log: %s\n", cfg.Audit.Path)

	if statePath != "" {
		state := &store.StateFile{
			Tasks:     tasks.List(),
			Stores:    stores.List(),
			Equipment: equipment.List(),
			Catalog:   ledger.Catalog(),
			Inventory: ledger.Snapshot(),
			Purchases: ledger.Purchases(),
		}
		if err := store.Save(statePath, state); err != nil {
			fmt.Fprintf(os.Stderr, "save state: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("state snapshot: %s\n", statePath)
	}
}
