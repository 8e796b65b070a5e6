package repository_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/adapters/repository/storetest"
	"github.com/okian/paddock/internal/domain/model"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) repository.Store {
		return repository.NewMemoryStore()
	})
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored rider profile", t, func() {
		s := repository.NewMemoryStore()
		tags := model.Tags{"dressage"}
		So(s.PutRiderProfile(ctx, model.RiderProfile{UserID: "r1", DisciplinePreferences: tags}), ShouldBeNil)

		Convey("When the caller mutates its slice and the returned copy", func() {
			tags[0] = "changed"
			p, err := s.RiderProfile(ctx, "r1")
			So(err, ShouldBeNil)
			p.DisciplinePreferences[0] = "also changed"

			Convey("Then the stored profile is unchanged", func() {
				again, err := s.RiderProfile(ctx, "r1")
				So(err, ShouldBeNil)
				So(again.DisciplinePreferences, ShouldResemble, model.Tags{"dressage"})
			})
		})

		Convey("When a record has no id", func() {
			So(s.PutRiderProfile(ctx, model.RiderProfile{}), ShouldWrap, model.ErrInvalidInput)
			So(s.PutListing(ctx, model.Listing{}), ShouldEqual, repository.ErrMissingID)
		})
	})
}
