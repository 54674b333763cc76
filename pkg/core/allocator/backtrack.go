package allocator

import "context"

// backtrack tries to unblock a unit by releasing placed siblings of the same assignment,
// most recent first. For each released sibling the blocked unit is placed and the sibling
// re-placed; if either fails the sibling is put back where it was. At most
// maxBacktrackDepth siblings are tried.
func (g *generator) backtrack(ctx context.Context, unit *Unit) (bool, error) {
	var siblings []*Unit
	for i := len(g.committed) - 1; i >= 0 && len(siblings) < g.maxBacktrackDepth; i-- {
		if g.committed[i].Assignment.ID == unit.Assignment.ID {
			siblings = append(siblings, g.committed[i])
		}
	}

	for _, sibling := range siblings {
		g.backtracks++
		original := g.release(sibling)

		result, err := g.findBestPlacement(ctx, unit)
		if err != nil {
			return false, err
		}
		if result.best == nil {
			if err := g.commit(sibling, original); err != nil {
				return false, err
			}
			continue
		}
		if err := g.commit(unit, *result.best); err != nil {
			return false, err
		}

		retry, err := g.findBestPlacement(ctx, sibling)
		if err != nil {
			return false, err
		}
		if retry.best != nil {
			if err := g.commit(sibling, *retry.best); err != nil {
				return false, err
			}
			return true, nil
		}

		g.release(unit)
		if err := g.commit(sibling, original); err != nil {
			return false, err
		}
	}

	return false, nil
}
