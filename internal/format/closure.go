package format

import (
	"fmt"

	"github.com/sidegen/sidegen/internal/model"
)

// RunClosure returns the tests a generated file must contain so every
// run command has a callable target: the member tests in order, then
// tests reachable only through run commands, in discovery order.
// The returned set marks those run-only extras by test ID.
func RunClosure(project *model.Project, members []*model.Test) ([]*model.Test, map[string]bool, error) {
	all := make([]*model.Test, 0, len(members))
	extra := map[string]bool{}
	seen := map[string]bool{}

	var queue []*model.Test

	for _, t := range members {
		if seen[t.ID] {
			continue
		}

		seen[t.ID] = true
		all = append(all, t)
		queue = append(queue, t)
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		for _, cmd := range t.Commands {
			if cmd.Disabled() || cmd.Command != "run" {
				continue
			}

			ref, ok := project.TestByName(cmd.Target)
			if !ok {
				ref, ok = project.TestByID(cmd.Target)
			}
			if !ok {
				return nil, nil, fmt.Errorf("%w: run target %q in test %q", ErrUnknownUnit, cmd.Target, t.Name)
			}

			if seen[ref.ID] {
				continue
			}

			seen[ref.ID] = true
			extra[ref.ID] = true
			all = append(all, ref)
			queue = append(queue, ref)
		}
	}

	return all, extra, nil
}
