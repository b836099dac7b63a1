package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/handling"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
	"github.com/goliatone/go-formerrors/pkg/render"
	"github.com/goliatone/go-formerrors/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// newEngine builds the reconciliation engine from the global flags.
func newEngine() (*reconcile.Engine, error) {
	vocab := vocabulary.Default()
	if vocabularyPath != "" {
		loaded, err := vocabulary.LoadFile(vocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		vocab = loaded
	}

	options := []reconcile.Option{
		reconcile.WithLogger(logger),
		reconcile.WithVocabulary(vocab),
	}
	if templatePath != "" {
		renderer, err := loadTemplate(vocab)
		if err != nil {
			return nil, err
		}
		options = append(options, reconcile.WithEntryRenderer(renderer))
	}
	return reconcile.New(options...), nil
}

func loadTemplate(vocab vocabulary.Vocabulary) (render.EntryRenderer, error) {
	if filepath.Ext(templatePath) == ".tmpl" {
		engine, err := gotemplate.New(gotemplate.WithBaseDir(filepath.Dir(templatePath)))
		if err != nil {
			return nil, fmt.Errorf("create template engine: %w", err)
		}
		tpl, err := render.NewEngineTemplate(engine, filepath.Base(templatePath), render.WithVocabulary(vocab))
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", templatePath, err)
		}
		return tpl, nil
	}

	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tpl, err := render.NewMarkupTemplate(string(data), render.WithVocabulary(vocab))
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", templatePath, err)
	}
	return tpl, nil
}

func loadPage(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", path, err)
	}
	return doc, nil
}

// targetForm resolves the --form flag, defaulting to the first form.
func targetForm(doc *dom.Document) (*html.Node, error) {
	id := strings.TrimSpace(formID)
	if id == "" {
		forms := doc.Forms()
		if len(forms) == 0 {
			return nil, fmt.Errorf("page has no form")
		}
		return forms[0], nil
	}
	form := doc.GetElementByID(id)
	if form == nil || form.DataAtom != atom.Form {
		return nil, fmt.Errorf("form %q not found", id)
	}
	return form, nil
}

func attach(doc *dom.Document, form *html.Node, engine *reconcile.Engine) (*handling.Handler, error) {
	h, err := handling.Attach(doc, form,
		handling.WithEngine(engine),
		handling.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("attach form %q: %w", dom.AttrOr(form, "id", ""), err)
	}
	return h, nil
}

// writeOutput sends the result to --output or to the command's stdout.
func writeOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if outputPath == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Written to %s\n", outputPath)
	return nil
}
