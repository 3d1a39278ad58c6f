package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rinkstats/hockey-stats-service/internal/repository/contract"
)

var (
	db     *sql.DB
	pool   *pgxpool.Pool
	dsn    string
	skippy bool
)

func TestMain(m *testing.M) {
	if os.Getenv("CONTRACT_TESTS") != "1" {
		// allow skipping contract tests unless explicitly enabled
		skippy = true
		os.Exit(m.Run())
	}

	dsn = buildDSNFromEnv()
	if dsn == "" {
		fmt.Println("[contract] DATABASE_URL or APP_POSTGRES_* env not set; skipping")
		skippy = true
		os.Exit(m.Run())
	}

	var err error
	db, err = sql.Open("pgx", dsn)
	if err != nil {
		fmt.Println("[contract] sql open error:", err)
		os.Exit(1)
	}
	if err := db.Ping(); err != nil {
		fmt.Println("[contract] db ping error:", err)
		os.Exit(1)
	}

	// Run migrations up
	migrationsDir := filepath.Clean(filepath.Join("..", "..", "..", "migrations", "goose_sql"))
	if err := goose.Up(db, migrationsDir); err != nil {
		fmt.Println("[contract] goose up error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("[contract] pgxpool new error:", err)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	db.Close()
	os.Exit(code)
}

func skipIfNeeded(t *testing.T) {
	if skippy {
		t.Skip("contract tests skipped; set CONTRACT_TESTS=1 and provide DB env")
	}
}

func buildDSNFromEnv() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	user := firstNonEmpty(os.Getenv("APP_POSTGRES_USER"), os.Getenv("POSTGRES_USER"), os.Getenv("DB_USER"))
	pass := firstNonEmpty(os.Getenv("APP_POSTGRES_PASSWORD"), os.Getenv("POSTGRES_PASSWORD"), os.Getenv("DB_PASSWORD"))
	host := firstNonEmpty(os.Getenv("APP_POSTGRES_HOST"), os.Getenv("POSTGRES_HOST"), "localhost")
	port := firstNonEmpty(os.Getenv("APP_POSTGRES_PORT"), os.Getenv("POSTGRES_PORT"), "5432")
	dbName := firstNonEmpty(os.Getenv("APP_POSTGRES_DB"), os.Getenv("POSTGRES_DB"), os.Getenv("DB_NAME"))
	ssl := firstNonEmpty(os.Getenv("APP_POSTGRES_SSLMODE"), os.Getenv("POSTGRES_SSLMODE"), "disable")
	if user == "" || pass == "" || dbName == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, dbName, ssl)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateAll(t *testing.T) {
	t.Helper()
	stmts := []string{
		"TRUNCATE TABLE player_stats RESTART IDENTITY CASCADE",
		"TRUNCATE TABLE game_stats RESTART IDENTITY CASCADE",
		"TRUNCATE TABLE game_events RESTART IDENTITY CASCADE",
		"TRUNCATE TABLE games RESTART IDENTITY CASCADE",
		"TRUNCATE TABLE players RESTART IDENTITY CASCADE",
		"TRUNCATE TABLE teams RESTART IDENTITY CASCADE",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("truncate failed: %v", err)
		}
	}
}

// Factories used by contract suites

func makeTeamRepo(t *testing.T) (repository.TeamRepository, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewTeamRepository(pool), func() { truncateAll(t) }
}

func makePlayerRepo(t *testing.T) (repository.PlayerRepository, func(ctx context.Context, name string) (int64, error), func()) {
	skipIfNeeded(t)
	truncateAll(t)
	teamRepo := NewTeamRepository(pool)
	makeTeam := func(ctx context.Context, name string) (int64, error) {
		team, err := teamRepo.Create(ctx, model.Team{Name: name})
		if err != nil {
			return 0, err
		}
		return team.ID, nil
	}
	return NewPlayerRepository(pool), makeTeam, func() { truncateAll(t) }
}

func makeGameRepo(t *testing.T) (repository.GameRepository, func(ctx context.Context, name string) (int64, error), func()) {
	skipIfNeeded(t)
	truncateAll(t)
	teamRepo := NewTeamRepository(pool)
	makeTeam := func(ctx context.Context, name string) (int64, error) {
		team, err := teamRepo.Create(ctx, model.Team{Name: name})
		if err != nil {
			return 0, err
		}
		return team.ID, nil
	}
	return NewGameRepository(pool), makeTeam, func() { truncateAll(t) }
}

// seedFixture creates a home team, an away team, one player on each, and a
// game between them.
func seedFixture(ctx context.Context) (contract.EventFixture, error) {
	var fx contract.EventFixture
	teamRepo := NewTeamRepository(pool)
	playerRepo := NewPlayerRepository(pool)
	gameRepo := NewGameRepository(pool)

	home, err := teamRepo.Create(ctx, model.Team{Name: "Home"})
	if err != nil {
		return fx, err
	}
	away, err := teamRepo.Create(ctx, model.Team{Name: "Away"})
	if err != nil {
		return fx, err
	}
	hp, err := playerRepo.Create(ctx, model.Player{TeamID: home.ID, FirstName: "Hans", LastName: "Home", Position: "C"})
	if err != nil {
		return fx, err
	}
	ap, err := playerRepo.Create(ctx, model.Player{TeamID: away.ID, FirstName: "Axel", LastName: "Away", Position: "D"})
	if err != nil {
		return fx, err
	}
	g, err := gameRepo.Create(ctx, model.Game{Date: time.Now().UTC(), HomeTeamID: home.ID, AwayTeamID: away.ID, Status: "in_progress"})
	if err != nil {
		return fx, err
	}
	fx.GameID = g.ID
	fx.HomePlayerID = hp.ID
	fx.AwayPlayerID = ap.ID
	return fx, nil
}

func makeEventRepo(t *testing.T) (repository.EventRepository, func(ctx context.Context) (contract.EventFixture, error), func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewEventRepository(pool), seedFixture, func() { truncateAll(t) }
}

func makeGameStatRepo(t *testing.T) (repository.GameStatRepository, repository.EventRepository, func(ctx context.Context) (contract.EventFixture, error), func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewGameStatRepository(pool), NewEventRepository(pool), seedFixture, func() { truncateAll(t) }
}

func makePlayerStatRepo(t *testing.T) (repository.PlayerStatRepository, func(ctx context.Context) (int64, error), func()) {
	skipIfNeeded(t)
	truncateAll(t)
	teamRepo := NewTeamRepository(pool)
	playerRepo := NewPlayerRepository(pool)
	mkPlayer := func(ctx context.Context) (int64, error) {
		team, err := teamRepo.Create(ctx, model.Team{Name: "SeedTeam"})
		if err != nil {
			return 0, err
		}
		p, err := playerRepo.Create(ctx, model.Player{TeamID: team.ID, FirstName: "Seed", LastName: "Player", Position: "LW"})
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	}
	return NewPlayerStatRepository(pool), mkPlayer, func() { truncateAll(t) }
}

func makeTx(t *testing.T) (repository.TxManager, repository.TeamRepository, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return NewTxManager(pool), NewTeamRepository(pool), func() { truncateAll(t) }
}

func makePinger(t *testing.T) (repository.Pinger, func()) {
	skipIfNeeded(t)
	return NewPinger(pool), func() {}
}

// Wire the contract suites to Postgres factories

func TestTeamRepository_PostgresContract(t *testing.T) {
	contract.RunTeamRepositoryContract(t, makeTeamRepo)
}

func TestPlayerRepository_PostgresContract(t *testing.T) {
	contract.RunPlayerRepositoryContract(t, makePlayerRepo)
}

func TestGameRepository_PostgresContract(t *testing.T) {
	contract.RunGameRepositoryContract(t, makeGameRepo)
}

func TestEventRepository_PostgresContract(t *testing.T) {
	contract.RunEventRepositoryContract(t, makeEventRepo)
}

func TestGameStatRepository_PostgresContract(t *testing.T) {
	contract.RunGameStatRepositoryContract(t, makeGameStatRepo)
}

func TestPlayerStatRepository_PostgresContract(t *testing.T) {
	contract.RunPlayerStatRepositoryContract(t, makePlayerStatRepo)
}

func TestTxManager_PostgresContract(t *testing.T) {
	contract.RunTxManagerContract(t, makeTx)
}

func TestPinger_PostgresContract(t *testing.T) {
	contract.RunPingerContract(t, makePinger)
}
