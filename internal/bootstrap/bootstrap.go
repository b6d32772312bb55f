package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	metricsinadapter "mdash/internal/modules/metrics/adapter/in"
	metricsoutadapter "mdash/internal/modules/metrics/adapter/out"
	metricsservice "mdash/internal/modules/metrics/service"
	metricsusecase "mdash/internal/modules/metrics/usecase"
	plugininadapter "mdash/internal/modules/plugin/adapter/in"
	pluginoutadapter "mdash/internal/modules/plugin/adapter/out"
	pluginservice "mdash/internal/modules/plugin/service"
	pluginusecase "mdash/internal/modules/plugin/usecase"
	reportinadapter "mdash/internal/modules/report/adapter/in"
	reportoutadapter "mdash/internal/modules/report/adapter/out"
	reportservice "mdash/internal/modules/report/service"
	reportusecase "mdash/internal/modules/report/usecase"
	statsinadapter "mdash/internal/modules/stats/adapter/in"
	statsoutadapter "mdash/internal/modules/stats/adapter/out"
	statsservice "mdash/internal/modules/stats/service"
	statsusecase "mdash/internal/modules/stats/usecase"
	"mdash/internal/platform/clock"
	"mdash/internal/platform/config"
	"mdash/internal/platform/id"
	uiapp "mdash/internal/ui/app"
)

type App struct {
	MetricsCLI metricsinadapter.CLIHandler
	StatsCLI   statsinadapter.CLIHandler
	ReportCLI  reportinadapter.CLIHandler
	PluginCLI  *plugininadapter.CLIHandler
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	ledgerStore := metricsoutadapter.NewFileLedgerStore(cfg.LedgerPath)
	entryProjector, err := metricsoutadapter.NewSQLiteEntryProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new entry projector: %w", err)
	}
	metricsSvc := metricsservice.NewEntryService(clk, ids, ledgerStore, entryProjector)
	metricsUC := metricsusecase.NewInteractor(metricsSvc)

	statsSvc := statsservice.NewStatsService(statsoutadapter.NewMetricsSourceAdapter(metricsUC))
	statsUC := statsusecase.NewInteractor(statsSvc)

	reportSvc := reportservice.NewReportService(clk, statsUC, reportoutadapter.NewVaultReportStore(cfg.ReportsPath))
	reportUC := reportusecase.NewInteractor(reportSvc)

	pluginUC := pluginusecase.NewInteractor(pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.PluginsPath),
		pluginoutadapter.NewGRPCHost(),
	))

	return &App{
		MetricsCLI: metricsinadapter.NewCLIHandler(metricsUC),
		StatsCLI:   statsinadapter.NewCLIHandler(statsUC),
		ReportCLI:  reportinadapter.NewCLIHandler(reportUC),
		PluginCLI:  plugininadapter.NewCLIHandler(pluginUC),
	}, nil
}

func RunTUI(workspacePath string, app *App) error {
	model := uiapp.NewModel(workspacePath, app.MetricsCLI, app.StatsCLI, app.ReportCLI, app.PluginCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
