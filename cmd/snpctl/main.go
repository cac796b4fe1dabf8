// Command snpctl is the operator CLI for the SNP ticket store: history,
// reprints, spreadsheet export, catalog lookups and the dead-letter list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"snp/internal/config"
	"snp/internal/dto"
	"snp/internal/infra"
	"snp/internal/model"
	"snp/internal/repository"
	"snp/internal/router"
	"snp/internal/service"
	"snp/internal/timekey"
	"snp/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// app holds the services shared by every subcommand.
type app struct {
	cfg      *config.Config
	rdb      *redis.Client
	tickets  service.TicketService
	catalogo service.CatalogoService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, codeError(3, "config: %s", err)
	}
	httpClient := infra.NewHTTPClient(cfg.HTTPTimeout)

	repo, err := repository.Open(cfg, httpClient)
	if err != nil {
		return nil, codeError(3, "%s", err)
	}
	dir, err := config.LoadSucursales(cfg.SucursalesFile)
	if err != nil {
		return nil, codeError(3, "%s", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without it")
		rdb = nil
	}

	var dlq worker.DeadLetter = worker.NopDLQ{}
	if rdb != nil {
		dlq = worker.NewRedisDLQ(rdb)
	}
	store := service.NewTicketStore(repo, timekey.NewGenerator(cfg.Timezone))
	mailCB := infra.NewCircuitBreaker(infra.DefaultBreakerConfig())

	return &app{
		cfg: cfg,
		rdb: rdb,
		tickets: service.NewTicketService(
			store, dir,
			infra.NewSheetsRelay(cfg.SheetsEndpoint, httpClient),
			router.NewMailSender(cfg, httpClient, mailCB),
			cfg.SNPEmails, dlq,
		),
		catalogo: service.NewCatalogoService(infra.NewCatalogoClient(cfg.CatalogoURL, httpClient), rdb),
	}, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(zerolog.WarnLevel)

	var a *app
	root := &cobra.Command{
		Use:           "snpctl",
		Short:         "Operator tools for SNP repair tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
	}

	var (
		termino string
		pagina  int
	)
	historialCmd := &cobra.Command{
		Use:   "historial",
		Short: "List tickets newest first, 6 per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			estado := service.NuevoEstadoHistorial()
			estado.Buscar(termino)
			estado.IrA(pagina)
			resp, err := a.tickets.Historial(cmd.Context(), estado)
			if err != nil {
				return codeError(2, "%s", err)
			}
			return printHistorial(cmd.OutOrStdout(), resp)
		},
	}
	historialCmd.Flags().StringVarP(&termino, "q", "q", "", "Search term (substring, case-insensitive)")
	historialCmd.Flags().IntVarP(&pagina, "pagina", "p", 1, "Page number")

	var reimprimirOut string
	reimprimirCmd := &cobra.Command{
		Use:   "reimprimir <key>",
		Short: "Write the two-copy PDF receipt of a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdf, n, err := a.tickets.Reimprimir(cmd.Context(), args[0])
			if err != nil {
				var nf *service.NotFoundError
				if errors.As(err, &nf) {
					return codeError(4, "%s", err)
				}
				return codeError(2, "%s", err)
			}
			out := reimprimirOut
			if out == "" {
				out = fmt.Sprintf("ticket_%s.pdf", model.FormatNumeroTicket(n.Numero))
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return codeError(1, "write %s: %s", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ticket %s → %s\n", model.FormatNumeroTicket(n.Numero), out)
			return nil
		},
	}
	reimprimirCmd.Flags().StringVarP(&reimprimirOut, "out", "o", "", "Output file (default ticket_NNNNN.pdf)")

	var exportarOut string
	exportarCmd := &cobra.Command{
		Use:   "exportar",
		Short: "Export every ticket, oldest first, to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.tickets.Exportar(cmd.Context())
			if err != nil {
				return codeError(2, "%s", err)
			}
			if err := os.WriteFile(exportarOut, data, 0o644); err != nil {
				return codeError(1, "write %s: %s", exportarOut, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exportado → %s\n", exportarOut)
			return nil
		},
	}
	exportarCmd.Flags().StringVarP(&exportarOut, "out", "o", "tickets_snp.xlsx", "Output file")

	productosCmd := &cobra.Command{
		Use:   "productos <prefijo>",
		Short: "Look up catalog SKUs by prefix (min 3 characters)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.catalogo.Sugerencias(cmd.Context(), args[0])
			if err != nil {
				return codeError(2, "%s", err)
			}
			return printSugerencias(cmd.OutOrStdout(), resp)
		},
	}

	var pendientesN int64
	pendientesCmd := &cobra.Command{
		Use:   "pendientes",
		Short: "List failed notification steps from the dead-letter list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.rdb == nil {
				return codeError(3, "REDIS_URL is not configured")
			}
			entries, err := worker.NewRedisDLQ(a.rdb).Listar(cmd.Context(), pendientesN)
			if err != nil {
				return codeError(2, "%s", err)
			}
			return printPendientes(cmd.OutOrStdout(), entries)
		},
	}
	pendientesCmd.Flags().Int64VarP(&pendientesN, "n", "n", 50, "Maximum entries")

	root.AddCommand(historialCmd, reimprimirCmd, exportarCmd, productosCmd, pendientesCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printHistorial(w io.Writer, resp dto.HistorialResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKET\tFECHA\tSUCURSAL\tCLIENTE\tPRODUCTO\tCLAVE")
	for _, t := range resp.Tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.NumeroFormateado, t.CreatedAtDisplay, t.Sucursal, t.Cliente, t.Producto, t.FirebaseKey)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Página %d de %d · %d tickets\n", resp.Pagina, resp.TotalPaginas, resp.Total)
	return err
}

func printSugerencias(w io.Writer, resp dto.SugerenciasResponse) error {
	if len(resp.Sugerencias) == 0 {
		_, err := fmt.Fprintf(w, "Sin resultados para %q (mínimo %d caracteres)\n", resp.Termino, service.MinCaracteresSugerencia)
		return err
	}
	for _, s := range resp.Sugerencias {
		if _, err := fmt.Fprintln(w, s.Label); err != nil {
			return err
		}
	}
	return nil
}

func printPendientes(w io.Writer, entries []worker.DLQEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FALLÓ\tTICKET\tPASO\tMOTIVO")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.FailedAt, e.TicketKey, e.Paso, e.Reason)
	}
	return tw.Flush()
}
