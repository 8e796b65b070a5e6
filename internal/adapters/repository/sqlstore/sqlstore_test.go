package sqlstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/adapters/repository/sqlstore"
	"github.com/okian/paddock/internal/adapters/repository/storetest"
	"github.com/okian/paddock/internal/domain/model"
)

func openSQLite(t *testing.T) repository.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paddock.db")
	s, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, openSQLite)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PADDOCK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PADDOCK_TEST_POSTGRES_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) repository.Store {
		s, err := sqlstore.Open(context.Background(), sqlstore.DriverPostgres, dsn)
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		return s
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unknown driver", t, func() {
		_, err := sqlstore.Open(ctx, "oracle", "")
		So(err, ShouldWrap, sqlstore.ErrUnsupportedDriver)
		So(err, ShouldWrap, model.ErrInvalidInput)
	})

	Convey("Given an existing database file", t, func() {
		path := filepath.Join(t.TempDir(), "reopen.db")
		s, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, path)
		So(err, ShouldBeNil)
		So(s.PutHorse(ctx, model.Horse{ID: "h1", OwnerID: "o1", Name: "Blitz"}), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When it is opened again", func() {
			again, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, path)
			So(err, ShouldBeNil)
			defer again.Close()

			Convey("Then the schema is reused and data survives", func() {
				h, err := again.Horse(ctx, "h1")
				So(err, ShouldBeNil)
				So(h.Name, ShouldEqual, "Blitz")
			})
		})
	})

	Convey("Given a horse written twice", t, func() {
		s := openSQLite(t)
		defer s.Close()
		So(s.PutHorse(ctx, model.Horse{ID: "h1", OwnerID: "o1", Name: "Blitz"}), ShouldBeNil)
		So(s.PutHorse(ctx, model.Horse{ID: "h1", OwnerID: "o1", Name: "Donner", NeedsTransport: true}), ShouldBeNil)

		Convey("Then the second write wins", func() {
			h, err := s.Horse(ctx, "h1")
			So(err, ShouldBeNil)
			So(h.Name, ShouldEqual, "Donner")
			So(h.NeedsTransport, ShouldBeTrue)
		})
	})
}
