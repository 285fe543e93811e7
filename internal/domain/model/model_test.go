package model_test

import (
	"testing"

	model "github.com/okian/psychometrician/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestItem(t *testing.T) {
	convey.Convey("Given an Item", t, func() {
		item := model.Item{ID: 7, Text: "I feel on edge.", Type: model.ResponseTypeLikert5, Domain: model.DomainAnxiety, Difficulty: 0.4}

		convey.Convey("When it satisfies the bank invariants", func() {
			convey.Convey("Then it validates", func() {
				convey.So(item.Validate(), convey.ShouldBeNil)
				convey.So(item.HasDomain(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the difficulty is out of range", func() {
			item.Difficulty = 1.2

			convey.Convey("Then validation fails", func() {
				convey.So(item.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the id is zero or negative", func() {
			convey.Convey("Then it still validates", func() {
				item.ID = 0
				convey.So(item.Validate(), convey.ShouldBeNil)
				item.ID = -3
				convey.So(item.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the text is blank", func() {
			item.Text = "   "

			convey.Convey("Then validation fails", func() {
				convey.So(item.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the domain is missing", func() {
			item.Domain = ""

			convey.Convey("Then the item is domainless but still valid", func() {
				convey.So(item.HasDomain(), convey.ShouldBeFalse)
				convey.So(item.Validate(), convey.ShouldBeNil)
			})
		})
	})
}

func TestResponseType(t *testing.T) {
	convey.Convey("Given response types", t, func() {
		convey.So(model.ResponseTypeLikert5.IsLikert(), convey.ShouldBeTrue)
		convey.So(model.ResponseType("likert_7").IsLikert(), convey.ShouldBeTrue)
		convey.So(model.ResponseType("free_text").IsLikert(), convey.ShouldBeFalse)
		convey.So(model.ResponseType("").IsLikert(), convey.ShouldBeFalse)
	})
}

func TestResponseLabel(t *testing.T) {
	convey.Convey("Given Likert responses", t, func() {
		convey.So(model.Response("1").Label(), convey.ShouldEqual, "Strongly Disagree")
		convey.So(model.Response("3").Label(), convey.ShouldEqual, "Neutral")
		convey.So(model.Response("5").Label(), convey.ShouldEqual, "Strongly Agree")

		convey.Convey("Unknown values are shown verbatim", func() {
			convey.So(model.Response("maybe").Label(), convey.ShouldEqual, "maybe")
		})

		convey.Convey("Levels are ordered", func() {
			convey.So(model.LikertLevels(), convey.ShouldResemble, []model.Response{"1", "2", "3", "4", "5"})
		})
	})
}

func TestReport(t *testing.T) {
	convey.Convey("Given the neutral report", t, func() {
		r := model.NeutralReport()

		convey.So(r.Overall, convey.ShouldEqual, 0.5)
		convey.So(r.Domains, convey.ShouldBeEmpty)
		convey.So(r.Interpretations, convey.ShouldBeEmpty)

		convey.Convey("When it is cloned and the clone is modified", func() {
			r.Domains["anxiety"] = 0.2
			c := r.Clone()
			c.Domains["anxiety"] = 0.9
			c.Interpretations["anxiety"] = model.BandHigh

			convey.Convey("Then the original is untouched", func() {
				convey.So(r.Domains["anxiety"], convey.ShouldEqual, 0.2)
				convey.So(r.Interpretations, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("Domains sort lexically", func() {
			r.Domains["stress"] = 0.1
			r.Domains["anxiety"] = 0.1
			convey.So(r.SortedDomains(), convey.ShouldResemble, []string{"anxiety", "stress"})
		})
	})
}

func TestDisplayName(t *testing.T) {
	convey.Convey("Given domain identifiers", t, func() {
		convey.Convey("Then they render title-cased with spaces", func() {
			convey.So(model.DisplayName(model.DomainAnxiety), convey.ShouldEqual, "Anxiety")
			convey.So(model.DisplayName("social_anxiety"), convey.ShouldEqual, "Social Anxiety")
			convey.So(model.DisplayName("ATTENTION"), convey.ShouldEqual, "Attention")
		})

		convey.Convey("Then an empty domain renders as general", func() {
			convey.So(model.DisplayName(""), convey.ShouldEqual, "General")
			convey.So(model.DisplayName("  "), convey.ShouldEqual, "General")
		})
	})
}
