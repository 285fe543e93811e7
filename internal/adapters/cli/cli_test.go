package cli_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/okian/psychometrician/internal/adapters/cli"
	"github.com/okian/psychometrician/internal/adapters/repository"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

// scriptedPrompter answers from fixed lists and aborts when they run out.
type scriptedPrompter struct {
	answers  []model.Response
	confirms []bool
	asked    []string
}

func (p *scriptedPrompter) Likert(question string) (model.Response, error) {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return "", cli.ErrAborted
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Confirm(string) (bool, error) {
	if len(p.confirms) == 0 {
		return false, nil
	}
	c := p.confirms[0]
	p.confirms = p.confirms[1:]
	return c, nil
}

func newService(quota int) *service.Service {
	store, err := repository.NewMemoryStore(
		model.Item{ID: 1, Text: "I worry about small things.", Type: model.ResponseTypeLikert5, Domain: model.DomainAnxiety, Difficulty: 0.5},
		model.Item{ID: 2, Text: "I feel hopeless.", Type: model.ResponseTypeLikert5, Domain: model.DomainDepression, Difficulty: 0.5},
		model.Item{ID: 3, Text: "I enjoy meeting new people.", Type: model.ResponseTypeLikert5, Domain: model.DomainSociability, Difficulty: 0.5},
	)
	So(err, ShouldBeNil)
	svc := service.New(service.WithStore(store), service.WithItemQuota(quota))
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestDriver_Run(t *testing.T) {
	Convey("Given a terminal driver over a running service", t, func() {
		svc := newService(2)
		defer svc.Stop()
		var out bytes.Buffer

		Convey("When the respondent answers every question", func() {
			prompter := &scriptedPrompter{answers: []model.Response{"5", "1"}}
			d := cli.NewDriver(svc, cli.WithPrompter(prompter), cli.WithOutput(&out), cli.WithColor(false))
			err := d.Run(context.Background())

			Convey("Then the session runs to the quota and the result is shown", func() {
				So(err, ShouldBeNil)
				So(prompter.asked, ShouldHaveLength, 2)
				So(prompter.asked[0], ShouldEqual, "I worry about small things.")
				text := out.String()
				So(text, ShouldContainSubstring, "Question 1 of 2")
				So(text, ShouldContainSubstring, "Question 2 of 2")
				So(text, ShouldContainSubstring, "Assessment results")
				So(text, ShouldContainSubstring, "Overall score:")
				So(text, ShouldContainSubstring, "Anxiety")
				So(text, ShouldContainSubstring, "Strongly Agree")
				So(text, ShouldNotContainSubstring, "\x1b[")
			})
		})

		Convey("When the respondent takes it twice", func() {
			prompter := &scriptedPrompter{
				answers:  []model.Response{"3", "3", "4", "4"},
				confirms: []bool{true, false},
			}
			d := cli.NewDriver(svc, cli.WithPrompter(prompter), cli.WithOutput(&out), cli.WithColor(false))

			Convey("Then two results are shown", func() {
				So(d.Run(context.Background()), ShouldBeNil)
				So(strings.Count(out.String(), "Assessment results"), ShouldEqual, 2)
			})
		})

		Convey("When the respondent interrupts", func() {
			prompter := &scriptedPrompter{answers: []model.Response{"2"}}
			d := cli.NewDriver(svc, cli.WithPrompter(prompter), cli.WithOutput(&out), cli.WithColor(false))

			Convey("Then the run stops quietly", func() {
				So(d.Run(context.Background()), ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "Assessment stopped.")
				So(out.String(), ShouldNotContainSubstring, "Assessment results")
			})
		})

		Convey("When the quota exceeds the bank", func() {
			big := newService(10)
			defer big.Stop()
			prompter := &scriptedPrompter{answers: []model.Response{"1", "2", "3", "4"}}
			d := cli.NewDriver(big, cli.WithPrompter(prompter), cli.WithOutput(&out), cli.WithColor(false), cli.WithRepeat(false))

			Convey("Then the session ends when the bank is exhausted", func() {
				So(d.Run(context.Background()), ShouldBeNil)
				So(prompter.asked, ShouldHaveLength, 3)
				So(out.String(), ShouldContainSubstring, "Assessment results")
			})
		})
	})
}

func TestRenderer(t *testing.T) {
	Convey("Given a result", t, func() {
		res := service.Result{
			State: "complete",
			Report: model.Report{
				Overall:         0.6,
				Domains:         map[string]float64{"social_anxiety": 0.8, model.DomainStress: 0.1},
				Interpretations: map[string]model.Band{"social_anxiety": model.BandHigh, model.DomainStress: model.BandLow},
			},
		}

		Convey("When rendered without color", func() {
			var out bytes.Buffer
			cli.NewRenderer(&out, false).Result(res)

			Convey("Then domains are title-cased in lexical order", func() {
				text := out.String()
				So(text, ShouldContainSubstring, "Social Anxiety")
				So(strings.Index(text, "Social Anxiety"), ShouldBeLessThan, strings.Index(text, "Stress"))
				So(text, ShouldContainSubstring, "high")
			})
		})

		Convey("When rendered with color", func() {
			var out bytes.Buffer
			cli.NewRenderer(&out, true).Result(res)

			Convey("Then bands are colored", func() {
				So(out.String(), ShouldContainSubstring, "\x1b[31;1mhigh")
				So(out.String(), ShouldContainSubstring, "\x1b[32;1mlow")
			})
		})
	})

	Convey("Given a bank summary", t, func() {
		var out bytes.Buffer
		cli.NewRenderer(&out, false).Summary(repository.Summary{
			Total:   3,
			Domains: map[string]int{model.DomainAnxiety: 2, model.DomainFatigue: 1},
		})

		Convey("Then totals and domains are listed", func() {
			So(out.String(), ShouldContainSubstring, "Item bank: 3 items")
			So(out.String(), ShouldContainSubstring, "Fatigue")
		})
	})
}
