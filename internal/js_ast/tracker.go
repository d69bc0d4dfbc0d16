package js_ast

// Recursion trackers remember which (entity, path) pairs are currently being
// analyzed or were already analyzed within one context. A query that finds
// its pair already tracked answers conservatively ("no additional effect" for
// effect queries, unknown for value queries) instead of recursing forever.

type PathTracker struct {
	entities map[string]map[Entity]struct{}
}

func (t *PathTracker) entitiesAt(path Path) map[Entity]struct{} {
	if t.entities == nil {
		t.entities = make(map[string]map[Entity]struct{})
	}
	key := path.Key()
	tracked, ok := t.entities[key]
	if !ok {
		tracked = make(map[Entity]struct{})
		t.entities[key] = tracked
	}
	return tracked
}

// Returns true if the pair was already tracked. Otherwise the pair is added
// and false is returned.
func (t *PathTracker) TrackEntityAtPathAndGetIfTracked(path Path, entity Entity) bool {
	tracked := t.entitiesAt(path)
	if _, ok := tracked[entity]; ok {
		return true
	}
	tracked[entity] = struct{}{}
	return false
}

func (t *PathTracker) IsTracked(path Path, entity Entity) bool {
	if t.entities == nil {
		return false
	}
	_, ok := t.entities[path.Key()][entity]
	return ok
}

func (t *PathTracker) Untrack(path Path, entity Entity) {
	if t.entities != nil {
		delete(t.entities[path.Key()], entity)
	}
}

// Evaluates "fn" with the pair tracked and untracks it afterwards. Re-entry
// for the same pair returns "onRecursion" without calling "fn".
func WithTrackedEntityAtPath[T any](t *PathTracker, path Path, entity Entity, fn func() T, onRecursion T) T {
	tracked := t.entitiesAt(path)
	if _, ok := tracked[entity]; ok {
		return onRecursion
	}
	tracked[entity] = struct{}{}
	result := fn()
	delete(tracked, entity)
	return result
}

// Like PathTracker but additionally keyed by the call site, so the same
// callee analyzed for two different calls is tracked twice.
type DiscriminatedPathTracker struct {
	entities map[string]map[*CallOptions]map[Entity]struct{}
}

func (t *DiscriminatedPathTracker) TrackEntityAtPathAndGetIfTracked(path Path, discriminator *CallOptions, entity Entity) bool {
	if t.entities == nil {
		t.entities = make(map[string]map[*CallOptions]map[Entity]struct{})
	}
	key := path.Key()
	byCall, ok := t.entities[key]
	if !ok {
		byCall = make(map[*CallOptions]map[Entity]struct{})
		t.entities[key] = byCall
	}
	tracked, ok := byCall[discriminator]
	if !ok {
		tracked = make(map[Entity]struct{})
		byCall[discriminator] = tracked
	}
	if _, ok := tracked[entity]; ok {
		return true
	}
	tracked[entity] = struct{}{}
	return false
}
