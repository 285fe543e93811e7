package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/psychometrician/internal/adapters/repository"
	"github.com/okian/psychometrician/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func seedItems() []model.Item {
	return []model.Item{
		{ID: 1, Text: "I worry a lot.", Type: model.ResponseTypeLikert5, Domain: model.DomainAnxiety, Difficulty: 0.3},
		{ID: 4, Text: "I feel low.", Type: model.ResponseTypeLikert5, Domain: model.DomainDepression, Difficulty: 0.5},
		{ID: 2, Text: "My heart races.", Type: model.ResponseTypeLikert5, Domain: model.DomainAnxiety, Difficulty: 0.6},
		{ID: 3, Text: "Untagged.", Type: model.ResponseTypeLikert5, Difficulty: 0.5},
	}
}

func openStores(t *testing.T) map[string]repository.Store {
	t.Helper()
	mem, err := repository.NewMemoryStore(seedItems()...)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	sqlStore, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "bank.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	if _, err := sqlStore.Seed(context.Background(), seedItems()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	return map[string]repository.Store{"memory": mem, "sqlite": sqlStore}
}

func TestStores(t *testing.T) {
	for name, store := range openStores(t) {
		Convey("Given a seeded "+name+" store", t, func() {
			ctx := context.Background()

			Convey("When reading the bank", func() {
				items, err := store.All(ctx)

				Convey("Then every item is returned", func() {
					So(err, ShouldBeNil)
					So(items, ShouldHaveLength, 4)
					So(store.Count(ctx), ShouldEqual, 4)
				})
			})

			Convey("When getting by id", func() {
				item, err := store.Get(ctx, 4)
				_, missing := store.Get(ctx, 99)

				Convey("Then known ids resolve and unknown ids fail", func() {
					So(err, ShouldBeNil)
					So(item.Text, ShouldEqual, "I feel low.")
					So(item.Type, ShouldEqual, model.ResponseTypeLikert5)
					So(errors.Is(missing, repository.ErrNotFound), ShouldBeTrue)
				})
			})

			Convey("When summarizing", func() {
				summary, err := store.Summary(ctx)

				Convey("Then untagged items count only towards the total", func() {
					So(err, ShouldBeNil)
					So(summary.Total, ShouldBeGreaterThanOrEqualTo, 4)
					So(summary.Domains[model.DomainAnxiety], ShouldEqual, 2)
					So(summary.Domains[model.DomainDepression], ShouldEqual, 1)
					So(summary.Domains, ShouldNotContainKey, "")
				})
			})

			Convey("When appending an invalid item", func() {
				_, err := store.Append(ctx, model.Item{Text: "  ", Type: model.ResponseTypeLikert5})

				Convey("Then it is rejected", func() {
					So(errors.Is(err, repository.ErrInvalidItem), ShouldBeTrue)
				})
			})

			Convey("When the context is cancelled", func() {
				cctx, cancel := context.WithCancel(ctx)
				cancel()
				_, err := store.All(cctx)

				Convey("Then the context error is returned", func() {
					So(errors.Is(err, context.Canceled), ShouldBeTrue)
				})
			})
		})
	}
}

func TestStoreAppend(t *testing.T) {
	for name, store := range openStores(t) {
		Convey("Given a seeded "+name+" store", t, func() {
			ctx := context.Background()

			Convey("When items are appended concurrently", func() {
				const n = 8
				var wg sync.WaitGroup
				ids := make(chan int, n)
				for i := 0; i < n; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						item, err := store.Append(ctx, model.Item{
							Text: "I feel tired.", Type: model.ResponseTypeLikert5,
							Domain: model.DomainFatigue, Difficulty: 0.4,
						})
						if err == nil {
							ids <- item.ID
						}
					}()
				}
				wg.Wait()
				close(ids)

				Convey("Then each gets a unique id above the previous maximum", func() {
					seen := map[int]bool{}
					for id := range ids {
						So(id, ShouldBeGreaterThan, 4)
						So(seen[id], ShouldBeFalse)
						seen[id] = true
					}
					So(seen, ShouldHaveLength, n)
					So(store.Count(ctx), ShouldEqual, 4+n)
				})
			})
		})
	}
}

func TestMemoryStoreSeeding(t *testing.T) {
	Convey("Given seed items", t, func() {
		Convey("When ids repeat", func() {
			items := seedItems()
			items[1].ID = 1
			_, err := repository.NewMemoryStore(items...)

			Convey("Then construction fails", func() {
				So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
			})
		})

		Convey("When an item is invalid", func() {
			_, err := repository.NewMemoryStore(model.Item{ID: 1, Text: "  "})

			Convey("Then construction fails", func() {
				So(errors.Is(err, repository.ErrInvalidItem), ShouldBeTrue)
			})
		})

		Convey("When ids are zero or negative", func() {
			store, err := repository.NewMemoryStore(
				model.Item{ID: -4, Text: "I feel tense.", Type: model.ResponseTypeLikert5, Domain: model.DomainStress},
				model.Item{ID: 0, Text: "I feel calm.", Type: model.ResponseTypeLikert5, Domain: model.DomainStress},
			)
			So(err, ShouldBeNil)
			item, err := store.Append(context.Background(), model.Item{Text: "x", Type: model.ResponseTypeLikert5})

			Convey("Then they load and the next id follows the largest", func() {
				So(err, ShouldBeNil)
				So(item.ID, ShouldEqual, 1)
				got, err := store.Get(context.Background(), 0)
				So(err, ShouldBeNil)
				So(got.Text, ShouldEqual, "I feel calm.")
			})
		})

		Convey("When every id is negative", func() {
			store, err := repository.NewMemoryStore(
				model.Item{ID: -7, Text: "I feel tense.", Type: model.ResponseTypeLikert5},
				model.Item{ID: -2, Text: "I feel calm.", Type: model.ResponseTypeLikert5},
			)
			So(err, ShouldBeNil)
			item, err := store.Append(context.Background(), model.Item{Text: "x", Type: model.ResponseTypeLikert5})

			Convey("Then the next id is one past the largest", func() {
				So(err, ShouldBeNil)
				So(item.ID, ShouldEqual, -1)
			})
		})

		Convey("When the store starts empty", func() {
			store, err := repository.NewMemoryStore()
			So(err, ShouldBeNil)
			item, err := store.Append(context.Background(), model.Item{Text: "x", Type: model.ResponseTypeLikert5})

			Convey("Then the first id is one", func() {
				So(err, ShouldBeNil)
				So(item.ID, ShouldEqual, 1)
			})
		})
	})
}

func TestSQLiteSeed(t *testing.T) {
	Convey("Given a sqlite store that already holds items", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "bank.db")
		store, err := repository.OpenSQLite(path)
		So(err, ShouldBeNil)
		defer store.Close()

		n, err := store.Seed(ctx, seedItems())
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 4)

		Convey("When seeding again", func() {
			n, err := store.Seed(ctx, repository.SampleBank())

			Convey("Then nothing is inserted", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
				So(store.Count(ctx), ShouldEqual, 4)
			})
		})

		Convey("When the database is reopened", func() {
			So(store.Close(), ShouldBeNil)
			again, err := repository.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer again.Close()

			Convey("Then the items survive", func() {
				items, err := again.All(ctx)
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 4)
				So(items[0].ID, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := repository.OpenSQLite("  ")

		Convey("Then opening fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	Convey("Given bank files", t, func() {
		Convey("When a JSON item omits type and difficulty", func() {
			path := writeFile(t, "bank.json", `{"items": [
				{"id": 1, "text": "I worry.", "domain": "anxiety"},
				{"id": 2, "text": "I rest.", "type": "likert_7", "domain": "fatigue", "difficulty": 0}
			]}`)
			items, err := repository.LoadFile(path)

			Convey("Then defaults are filled in", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 2)
				So(items[0].Type, ShouldEqual, model.ResponseTypeLikert5)
				So(items[0].Difficulty, ShouldEqual, 0.5)
				So(items[1].Type, ShouldEqual, model.ResponseType("likert_7"))
				So(items[1].Difficulty, ShouldEqual, 0.0)
			})
		})

		Convey("When the bank is YAML", func() {
			path := writeFile(t, "bank.yml", "items:\n  - id: 7\n    text: I feel low.\n    domain: depression\n    difficulty: 0.7\n")
			items, err := repository.LoadFile(path)

			Convey("Then it loads the same way", func() {
				So(err, ShouldBeNil)
				So(items, ShouldResemble, []model.Item{{
					ID: 7, Text: "I feel low.", Type: model.ResponseTypeLikert5,
					Domain: model.DomainDepression, Difficulty: 0.7,
				}})
			})
		})

		Convey("When the document has no items key", func() {
			_, err := repository.LoadFile(writeFile(t, "bank.json", `{"questions": []}`))

			Convey("Then ErrMissingItems is returned", func() {
				So(errors.Is(err, repository.ErrMissingItems), ShouldBeTrue)
			})
		})

		Convey("When the items list is empty", func() {
			items, err := repository.LoadFile(writeFile(t, "bank.json", `{"items": []}`))

			Convey("Then an empty bank is returned", func() {
				So(err, ShouldBeNil)
				So(items, ShouldBeEmpty)
			})
		})

		Convey("When ids repeat", func() {
			_, err := repository.LoadFile(writeFile(t, "bank.json",
				`{"items": [{"id": 1, "text": "a"}, {"id": 1, "text": "b"}]}`))

			Convey("Then ErrDuplicateID is returned", func() {
				So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
			})
		})

		Convey("When a difficulty is out of range", func() {
			_, err := repository.LoadFile(writeFile(t, "bank.json",
				`{"items": [{"id": 1, "text": "a", "difficulty": 1.5}]}`))

			Convey("Then ErrInvalidItem is returned", func() {
				So(errors.Is(err, repository.ErrInvalidItem), ShouldBeTrue)
			})
		})

		Convey("When the extension is unknown", func() {
			_, err := repository.LoadFile(writeFile(t, "bank.csv", "id,text"))

			Convey("Then ErrUnsupportedFormat is returned", func() {
				So(errors.Is(err, repository.ErrUnsupportedFormat), ShouldBeTrue)
			})
		})

		Convey("When the file is missing", func() {
			_, err := repository.LoadFile(filepath.Join(t.TempDir(), "nope.json"))

			Convey("Then the read error surfaces", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestSampleBank(t *testing.T) {
	Convey("Given the built-in bank", t, func() {
		items := repository.SampleBank()

		Convey("Then it covers every known domain", func() {
			domains := map[string]int{}
			for _, item := range items {
				So(item.Validate(), ShouldBeNil)
				domains[item.Domain]++
			}
			for _, d := range model.KnownDomains() {
				So(domains[d], ShouldBeGreaterThan, 0)
			}
		})
	})
}
