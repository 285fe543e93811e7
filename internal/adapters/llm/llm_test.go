package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/psychometrician/internal/adapters/llm"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTemplateCompleter(t *testing.T) {
	Convey("Given a template completer", t, func() {
		ctx := context.Background()
		c := llm.NewTemplateCompleter()

		Convey("When completing a generation prompt", func() {
			out, err := c.Complete(ctx, generator.BuildPrompt(model.DomainFatigue, nil))

			Convey("Then it returns a JSON item text for that domain", func() {
				So(err, ShouldBeNil)
				So(generator.ExtractText(out), ShouldEqual, "I feel drained by mid-afternoon.")
			})
		})

		Convey("When the same domain is asked repeatedly", func() {
			prompt := generator.BuildPrompt(model.DomainStress, nil)
			seen := map[string]bool{}
			for i := 0; i < 3; i++ {
				out, err := c.Complete(ctx, prompt)
				So(err, ShouldBeNil)
				seen[generator.ExtractText(out)] = true
			}

			Convey("Then it cycles through distinct phrases", func() {
				So(len(seen), ShouldEqual, 3)
			})
		})

		Convey("When the domain has no phrases", func() {
			out, err := c.Complete(ctx, generator.BuildPrompt("resilience", nil))

			Convey("Then a generic statement is produced", func() {
				So(err, ShouldBeNil)
				So(generator.ExtractText(out), ShouldEqual, "Questions about resilience describe me well.")
			})
		})

		Convey("When the prompt names no domain", func() {
			_, err := c.Complete(ctx, "hello")

			Convey("Then it fails", func() {
				So(errors.Is(err, llm.ErrUnknownDomain), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.Complete(cctx, generator.BuildPrompt(model.DomainStress, nil))

			Convey("Then the context error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When used by a generator", func() {
			g := generator.New(c)
			item, err := g.Generate(ctx, nil, generator.Request{Domain: model.DomainAttention})

			Convey("Then a full item is drafted", func() {
				So(err, ShouldBeNil)
				So(item.Text, ShouldEqual, "I lose track of conversations halfway through.")
				So(item.Domain, ShouldEqual, model.DomainAttention)
			})
		})
	})
}

func TestNewCompleter(t *testing.T) {
	Convey("Given provider names", t, func() {
		ctx := context.Background()

		Convey("When the provider is template", func() {
			c, err := llm.NewCompleter(ctx, llm.ProviderTemplate, "", "")
			So(err, ShouldBeNil)
			So(c, ShouldHaveSameTypeAs, &llm.TemplateCompleter{})
		})

		Convey("When genai has no api key", func() {
			_, err := llm.NewCompleter(ctx, llm.ProviderGenAI, "", "")
			So(errors.Is(err, llm.ErrMissingAPIKey), ShouldBeTrue)
		})

		Convey("When the provider is unknown", func() {
			_, err := llm.NewCompleter(ctx, "gpt2", "", "")
			So(errors.Is(err, llm.ErrUnknownBackend), ShouldBeTrue)
		})
	})
}
