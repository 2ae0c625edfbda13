package products

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repotest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLRepository(db, dbx.Postgres), mock, db
}

// newSQLiteRepo hands out strictly increasing creation times, one minute apart.
func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo := NewSQLRepository(repotest.OpenSQLite(t), dbx.SQLite)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return repo
}

func seed(t *testing.T, repo *SQLRepository, title, description, category, location, seller string, images ...string) *models.Product {
	t.Helper()
	p, err := repo.Create(context.Background(), &models.Product{
		Title: title, Description: description, Price: 10, Currency: "EUR",
		Category: category, Location: location, Seller: seller, Images: images,
	})
	require.NoError(t, err)
	return p
}

func titles(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Title)
	}
	return out
}

func TestList_BuildsConjunctiveFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT .+ FROM products WHERE category = \$1 AND location = \$2 AND \(LOWER\(title\) LIKE \$3 ESCAPE '\\' OR LOWER\(description\) LIKE \$4 ESCAPE '\\'\) ORDER BY created_at DESC, id DESC$`
	mock.ExpectQuery(q).
		WithArgs("home", "Berlin", `%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "price", "currency", "category", "location", "seller", "images", "created_at"}))

	got, err := repo.List(context.Background(), models.ProductFilter{Category: "home", Location: "Berlin", Search: "50%"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT .+ FROM products WHERE id = \$1$`).
		WithArgs(int64(3)).
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), 3)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteOwned_SingleConditionalStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+products\s+WHERE\s+id\s*=\s*\$1\s+AND\s+seller\s*=\s*\$2\s+RETURNING\s+images\s*$`
	mock.ExpectQuery(q).
		WithArgs(int64(5), "alice").
		WillReturnRows(sqlmock.NewRows([]string{"images"}).AddRow(`["uploads/a.jpg"]`))

	images, err := repo.DeleteOwned(context.Background(), 5, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a.jpg"}, images)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_CreateGetRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	created := seed(t, repo, "Desk lamp", "Brass, works", "home", "Berlin", "alice", "uploads/1.jpg", "uploads/2.jpg")

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("product mismatch (-want +got):\n%s", diff)
	}

	_, err = repo.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_CreateWithoutImagesReturnsEmptyList(t *testing.T) {
	repo := newSQLiteRepo(t)

	created := seed(t, repo, "Chair", "Oak", "home", "Berlin", "alice")
	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)
}

func TestSQLite_SearchCaseInsensitiveNewestFirst(t *testing.T) {
	repo := newSQLiteRepo(t)

	seed(t, repo, "Desk LAMP", "brass", "home", "Berlin", "alice")
	seed(t, repo, "Bicycle", "red", "sport", "Berlin", "bob")
	seed(t, repo, "Bookshelf", "comes with a reading lamp", "home", "Hamburg", "bob")

	got, err := repo.List(context.Background(), models.ProductFilter{Search: "lamp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bookshelf", "Desk LAMP"}, titles(got))
}

func TestSQLite_FiltersAreConjunctive(t *testing.T) {
	repo := newSQLiteRepo(t)

	seed(t, repo, "Desk lamp", "brass", "home", "Berlin", "alice")
	seed(t, repo, "Floor lamp", "steel", "home", "Hamburg", "alice")
	seed(t, repo, "Lamp oil", "1l", "garden", "Berlin", "bob")

	got, err := repo.List(context.Background(), models.ProductFilter{Category: "home", Location: "Berlin", Search: "lamp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Desk lamp"}, titles(got))

	all, err := repo.List(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lamp oil", "Floor lamp", "Desk lamp"}, titles(all))
}

func TestSQLite_SearchTreatsWildcardsLiterally(t *testing.T) {
	repo := newSQLiteRepo(t)

	seed(t, repo, "100% cotton shirt", "", "clothes", "Berlin", "alice")
	seed(t, repo, "1000 puzzle", "", "toys", "Berlin", "alice")

	got, err := repo.List(context.Background(), models.ProductFilter{Search: "0%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% cotton shirt"}, titles(got))
}

func TestSQLite_SearchFoldsNonASCIICase(t *testing.T) {
	repo := newSQLiteRepo(t)

	seed(t, repo, "Çanta", "deri", "bags", "İzmir", "ayse")
	seed(t, repo, "Ölçü Lamba", "Şık", "home", "İzmir", "ayse")
	seed(t, repo, "Bicycle", "red", "sport", "Berlin", "bob")

	tests := []struct {
		search string
		want   []string
	}{
		{"Çanta", []string{"Çanta"}},
		{"çanta", []string{"Çanta"}},
		{"ÇANTA", []string{"Çanta"}},
		{"ÖLÇÜ", []string{"Ölçü Lamba"}},
		{"Ölçü", []string{"Ölçü Lamba"}},
		{"şık", []string{"Ölçü Lamba"}},
		{"Şık", []string{"Ölçü Lamba"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := repo.List(context.Background(), models.ProductFilter{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestSQLite_DeleteByNonOwnerKeepsProduct(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	p := seed(t, repo, "Desk lamp", "brass", "home", "Berlin", "alice", "uploads/a.jpg")

	_, err := repo.DeleteOwned(ctx, p.ID, "mallory")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	images, err := repo.DeleteOwned(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a.jpg"}, images)

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.DeleteOwned(ctx, p.ID, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_SellerOf(t *testing.T) {
	repo := newSQLiteRepo(t)

	p := seed(t, repo, "Desk lamp", "brass", "home", "Berlin", "alice")

	seller, err := repo.SellerOf(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", seller)

	_, err = repo.SellerOf(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
