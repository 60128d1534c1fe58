package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/expenses/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

// behavesLikeStore registers the behaviour every backend must share.
// open is called once per leaf, so each path starts from an empty store.
func behavesLikeStore(open func() Store) {
	ctx := context.Background()
	store := open()
	Reset(func() { _ = store.Close() })

	Convey("When the store is empty", func() {
		list, err := store.List(ctx)
		So(err, ShouldBeNil)

		Convey("Then list should be an empty, non-nil slice", func() {
			So(list, ShouldNotBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("Then lookups by id should report not found", func() {
			_, err := store.Get(ctx, 1)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			_, err = store.Update(ctx, 1, model.Patch{Amount: ptr(1.0)})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			So(errors.Is(store.Delete(ctx, 1), ErrNotFound), ShouldBeTrue)
		})

		Convey("Then count should be zero and ping should succeed", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
			So(store.Ping(ctx), ShouldBeNil)
		})
	})

	Convey("When creating expenses", func() {
		first, err := store.Create(ctx, model.Draft{Amount: 50, Category: "Food", Date: "2024-01-02", Description: "Lunch"})
		So(err, ShouldBeNil)
		second, err := store.Create(ctx, model.Draft{Amount: 12.5, Category: "Transport"})
		So(err, ShouldBeNil)

		Convey("Then ids should be assigned in increasing order", func() {
			So(first.ID, ShouldBeGreaterThan, int64(0))
			So(second.ID, ShouldBeGreaterThan, first.ID)
		})

		Convey("Then the stored row should round-trip", func() {
			got, err := store.Get(ctx, first.ID)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, first)
			So(got.Description, ShouldEqual, "Lunch")
		})

		Convey("Then absent optional fields should read back as empty strings", func() {
			got, err := store.Get(ctx, second.ID)
			So(err, ShouldBeNil)
			So(got.Date, ShouldEqual, "")
			So(got.Description, ShouldEqual, "")
		})

		Convey("Then list should return both rows ordered by id", func() {
			list, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldResemble, []model.Expense{first, second})

			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})

		Convey("And updating only the amount", func() {
			updated, err := store.Update(ctx, first.ID, model.Patch{Amount: ptr(75.0)})
			So(err, ShouldBeNil)

			Convey("Then only the amount should change", func() {
				So(updated.ID, ShouldEqual, first.ID)
				So(updated.Amount, ShouldEqual, 75.0)
				So(updated.Category, ShouldEqual, "Food")
				So(updated.Date, ShouldEqual, "2024-01-02")
				So(updated.Description, ShouldEqual, "Lunch")

				got, err := store.Get(ctx, first.ID)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, updated)
			})
		})

		Convey("And applying an empty patch", func() {
			updated, err := store.Update(ctx, first.ID, model.Patch{})

			Convey("Then the row should be unchanged", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldResemble, first)
			})
		})

		Convey("And deleting the first row", func() {
			So(store.Delete(ctx, first.ID), ShouldBeNil)

			Convey("Then it should be gone and the other row kept", func() {
				_, err := store.Get(ctx, first.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(store.Delete(ctx, first.ID), ErrNotFound), ShouldBeTrue)

				list, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldResemble, []model.Expense{second})
			})

			Convey("Then a new row should not reuse the deleted id", func() {
				third, err := store.Create(ctx, model.Draft{Amount: 1, Category: "Misc"})
				So(err, ShouldBeNil)
				So(third.ID, ShouldBeGreaterThan, second.ID)
			})
		})
	})

	Convey("When creating concurrently", func() {
		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.Create(ctx, model.Draft{Amount: float64(i), Category: "Load"})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		Convey("Then every insert should land with a distinct id", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
			list, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, writers)

			seen := make(map[int64]bool, writers)
			for _, e := range list {
				seen[e.ID] = true
			}
			So(len(seen), ShouldEqual, writers)
		})
	})
}
