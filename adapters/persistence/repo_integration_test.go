package persistence

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool       *pgxpool.Pool
	pgContainer  *postgres.PostgresContainer
	testLogger   logger.Logger
	userRepo     user.Repository
	profileRepo  profile.Repository
	analysisRepo analysis.Repository
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNop()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.userRepo = NewPostgresUserRepo(s.dbPool, s.testLogger)
	s.profileRepo = NewPostgresProfileRepo(s.dbPool, s.testLogger)
	s.analysisRepo = NewPostgresAnalysisRepo(s.dbPool, s.testLogger)
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() || os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=1 to run.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

func (s *RepoIntegrationTestSuite) newUser(email string) *user.User {
	u := user.New(email, "hashedpassword", time.Now().UTC())
	s.Require().NoError(s.userRepo.CreateWithProfile(context.Background(), u))
	return u
}

func (s *RepoIntegrationTestSuite) Test_CreateWithProfile_And_Find() {
	ctx := context.Background()
	u := s.newUser("alice@example.com")

	found, err := s.userRepo.FindByEmail(ctx, "alice@example.com")
	s.NoError(err)
	s.Equal(u.ID, found.ID)

	p, err := s.profileRepo.GetByUserID(ctx, u.ID)
	s.NoError(err)
	s.Nil(p.Name)
	s.False(p.IsComplete())
}

func (s *RepoIntegrationTestSuite) Test_CreateWithProfile_DuplicateEmail() {
	s.newUser("dup@example.com")

	err := s.userRepo.CreateWithProfile(context.Background(), user.New("dup@example.com", "x", time.Now().UTC()))
	s.ErrorIs(err, apperror.ErrConflict)
}

func (s *RepoIntegrationTestSuite) Test_FindByEmail_NotFound() {
	_, err := s.userRepo.FindByEmail(context.Background(), "nobody@example.com")
	s.ErrorIs(err, user.ErrUserNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Profile_Update_Merges() {
	ctx := context.Background()
	u := s.newUser("bob@example.com")

	name, skills := "Bob", "Go"
	_, err := s.profileRepo.Update(ctx, u.ID, func(p *profile.Profile) error {
		p.Apply(profile.Patch{Name: &name, Skills: &skills})
		return nil
	})
	s.NoError(err)

	degree := "BSc"
	updated, err := s.profileRepo.Update(ctx, u.ID, func(p *profile.Profile) error {
		p.Apply(profile.Patch{Degree: &degree})
		p.AttachCV("JVBERi0=", "cv text")
		return nil
	})
	s.NoError(err)
	s.Equal("Bob", *updated.Name)
	s.Equal("BSc", *updated.Degree)
	s.Equal("cv text", *updated.CVText)

	time.Sleep(10 * time.Millisecond)
	s.NoError(s.profileRepo.SetCVArchiveURL(ctx, u.ID, "https://cdn.example.com/cv.pdf"))
	got, err := s.profileRepo.GetByUserID(ctx, u.ID)
	s.NoError(err)
	s.Equal("Go", *got.Skills)
	s.Equal("https://cdn.example.com/cv.pdf", *got.CVArchiveURL)
	s.True(got.UpdatedAt.After(updated.UpdatedAt))
}

func (s *RepoIntegrationTestSuite) Test_Profile_ConcurrentUpdatesKeepBothFields() {
	ctx := context.Background()
	u := s.newUser("carol@example.com")

	name, skills := "Carol", "SQL"
	var wg sync.WaitGroup
	for _, patch := range []profile.Patch{{Name: &name}, {Skills: &skills}} {
		wg.Add(1)
		go func(patch profile.Patch) {
			defer wg.Done()
			_, err := s.profileRepo.Update(ctx, u.ID, func(p *profile.Profile) error {
				p.Apply(patch)
				return nil
			})
			s.NoError(err)
		}(patch)
	}
	wg.Wait()

	got, err := s.profileRepo.GetByUserID(ctx, u.ID)
	s.NoError(err)
	s.Equal("Carol", *got.Name)
	s.Equal("SQL", *got.Skills)
}

func (s *RepoIntegrationTestSuite) Test_Profile_GetOrCreate() {
	ctx := context.Background()
	u := user.New("dave@example.com", "x", time.Now().UTC())
	_, err := s.dbPool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`, u.ID, u.Email, u.PasswordHash)
	s.Require().NoError(err)

	_, err = s.profileRepo.GetByUserID(ctx, u.ID)
	s.ErrorIs(err, profile.ErrProfileNotFound)

	p, err := s.profileRepo.GetOrCreate(ctx, u.ID)
	s.NoError(err)
	s.Equal(u.ID, p.UserID)
}

func (s *RepoIntegrationTestSuite) Test_Analysis_SaveAndListNewestFirst() {
	ctx := context.Background()
	u := s.newUser("erin@example.com")

	older, err := analysis.New(u.ID, []analysis.CareerPath{{CareerPath: "Backend Engineer"}}, time.Now().UTC().Add(-time.Hour))
	s.Require().NoError(err)
	newer, err := analysis.New(u.ID, []analysis.CareerPath{{CareerPath: "Data Engineer"}}, time.Now().UTC())
	s.Require().NoError(err)

	s.NoError(s.analysisRepo.Save(ctx, older))
	n, err := s.analysisRepo.CountByUser(ctx, u.ID)
	s.NoError(err)
	s.Equal(int64(1), n)
	s.NoError(s.analysisRepo.Save(ctx, newer))
	n, err = s.analysisRepo.CountByUser(ctx, u.ID)
	s.NoError(err)
	s.Equal(int64(2), n)

	list, err := s.analysisRepo.ListByUser(ctx, u.ID)
	s.NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)

	var paths []analysis.CareerPath
	s.NoError(json.Unmarshal(list[0].Result, &paths))
	s.Equal("Data Engineer", paths[0].CareerPath)

	empty, err := s.analysisRepo.ListByUser(ctx, uuid.New())
	s.NoError(err)
	s.Empty(empty)
}
