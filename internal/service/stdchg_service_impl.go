package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elasticnow/elasticnow/internal/domain"
)

type stdChgService struct {
	work     WorkSystem
	prompt   Prompter
	observer UseCaseObserver
}

func NewStdChgService(work WorkSystem, prompt Prompter, observers ...UseCaseObserver) StdChgService {
	return &stdChgService{work: work, prompt: prompt, observer: useCaseObserverOrNoop(observers)}
}

func (s *stdChgService) Create(ctx context.Context, req StdChgRequest) (result *StdChgResult, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "stdchg", start, err, map[string]any{"bin": req.Bin}) }()

	templateID := req.TemplateID
	if templateID == "" {
		tpl, ok, err := s.chooseTemplate(ctx, req.Search)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &StdChgResult{Cancelled: true}, nil
		}
		templateID = tpl.ID
	}

	changeID, err := s.work.CreateChangeFromTemplate(ctx, templateID, req.Bin)
	if err != nil {
		return nil, fmt.Errorf("creating standard change: %w", err)
	}
	return &StdChgResult{ChangeID: changeID, TemplateID: templateID}, nil
}

// chooseTemplate returns ok=false when the user cancels.
func (s *stdChgService) chooseTemplate(ctx context.Context, search string) (domain.ChangeTemplate, bool, error) {
	templates, err := s.work.SearchTemplates(ctx, search)
	if err != nil {
		return domain.ChangeTemplate{}, false, fmt.Errorf("searching standard changes: %w", err)
	}
	if len(templates) == 0 {
		return domain.ChangeTemplate{}, false, fmt.Errorf("%w for search %q", ErrNoTemplates, search)
	}

	labels := make([]string, 0, len(templates)+1)
	for _, t := range templates {
		labels = append(labels, t.SelectLabel())
	}
	labels = append(labels, OptionCancel)

	choice, err := s.prompt.Select("Please choose a standard change template:", labels)
	if errors.Is(err, ErrPromptAborted) || (err == nil && choice == OptionCancel) {
		return domain.ChangeTemplate{}, false, nil
	}
	if err != nil {
		return domain.ChangeTemplate{}, false, err
	}
	for _, t := range templates {
		if t.SelectLabel() == choice {
			return t, true, nil
		}
	}
	return domain.ChangeTemplate{}, false, fmt.Errorf("selection %q matches no listed template", choice)
}
