// Package tag maintains the many-to-many mapping between entities and
// normalized free-text labels. Tags are the editor's ad hoc grouping
// mechanism: membership queries need to be cheap in both directions, so the
// manager keeps a bucket per tag alongside the per-entity tag sets.
package tag

import (
	"sort"
	"strings"

	"github.com/meshforge/scenecore/types"
)

// Normalize maps a raw label to its canonical form: surrounding whitespace
// trimmed, lowercased, internal whitespace runs replaced with a single dash.
// A label that normalizes to "" is treated as no tag at all.
func Normalize(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, "-")
}

// Manager tracks tag membership for one scene. It is owned by the scene and
// cleared with it; entities are referred to by id only.
type Manager struct {
	byEntity map[types.EntityID]map[string]struct{}
	byTag    map[string]map[types.EntityID]struct{}
}

func NewManager() *Manager {
	return &Manager{
		byEntity: make(map[types.EntityID]map[string]struct{}),
		byTag:    make(map[string]map[types.EntityID]struct{}),
	}
}

// Add tags the entity with the normalized form of raw. Adding an
// already-present tag or a tag that normalizes to "" is a no-op.
func (m *Manager) Add(entity types.EntityID, raw string) {
	tag := Normalize(raw)
	if tag == "" {
		return
	}
	entityTags, ok := m.byEntity[entity]
	if !ok {
		entityTags = make(map[string]struct{})
		m.byEntity[entity] = entityTags
	}
	if _, present := entityTags[tag]; present {
		return
	}
	entityTags[tag] = struct{}{}

	bucket, ok := m.byTag[tag]
	if !ok {
		bucket = make(map[types.EntityID]struct{})
		m.byTag[tag] = bucket
	}
	bucket[entity] = struct{}{}
}

// Remove strips the normalized form of raw from the entity. Removing an
// absent tag is a no-op.
func (m *Manager) Remove(entity types.EntityID, raw string) {
	tag := Normalize(raw)
	if tag == "" {
		return
	}
	entityTags, ok := m.byEntity[entity]
	if !ok {
		return
	}
	if _, present := entityTags[tag]; !present {
		return
	}
	delete(entityTags, tag)
	if len(entityTags) == 0 {
		delete(m.byEntity, entity)
	}
	m.removeFromBucket(tag, entity)
}

// Set replaces the entity's tags with the normalized forms of raws.
func (m *Manager) Set(entity types.EntityID, raws []string) {
	m.ClearTags(entity)
	for _, raw := range raws {
		m.Add(entity, raw)
	}
}

// ClearTags strips every tag from the entity.
func (m *Manager) ClearTags(entity types.EntityID) {
	for tag := range m.byEntity[entity] {
		m.removeFromBucket(tag, entity)
	}
	delete(m.byEntity, entity)
}

// DestroyEntity is the cleanup hook the store calls when an entity is
// deleted: the entity leaves every bucket and empty buckets are pruned.
func (m *Manager) DestroyEntity(entity types.EntityID) {
	m.ClearTags(entity)
}

// Has reports whether the entity carries the normalized form of raw.
func (m *Manager) Has(entity types.EntityID, raw string) bool {
	_, ok := m.byEntity[entity][Normalize(raw)]
	return ok
}

// Tags returns the entity's tags, sorted.
func (m *Manager) Tags(entity types.EntityID) []string {
	entityTags := m.byEntity[entity]
	out := make([]string, 0, len(entityTags))
	for tag := range entityTags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// FindByTag returns every entity carrying the normalized form of raw, in
// unspecified order.
func (m *Manager) FindByTag(raw string) []types.EntityID {
	bucket := m.byTag[Normalize(raw)]
	out := make([]types.EntityID, 0, len(bucket))
	for entity := range bucket {
		out = append(out, entity)
	}
	return out
}

// FindByAllTags returns the entities carrying every listed tag. An empty
// input yields an empty result. The smallest bucket is iterated and each
// candidate tested against the rest.
func (m *Manager) FindByAllTags(raws []string) []types.EntityID {
	if len(raws) == 0 {
		return nil
	}
	tags := make([]string, 0, len(raws))
	for _, raw := range raws {
		tag := Normalize(raw)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}

	smallest := -1
	for i, tag := range tags {
		bucket, ok := m.byTag[tag]
		if !ok {
			return nil
		}
		if smallest == -1 || len(bucket) < len(m.byTag[tags[smallest]]) {
			smallest = i
		}
	}

	out := make([]types.EntityID, 0, len(m.byTag[tags[smallest]]))
candidates:
	for entity := range m.byTag[tags[smallest]] {
		for i, tag := range tags {
			if i == smallest {
				continue
			}
			if _, ok := m.byTag[tag][entity]; !ok {
				continue candidates
			}
		}
		out = append(out, entity)
	}
	return out
}

// FindByAnyTag returns the entities carrying at least one of the listed
// tags, de-duplicated. An empty input yields an empty result.
func (m *Manager) FindByAnyTag(raws []string) []types.EntityID {
	if len(raws) == 0 {
		return nil
	}
	seen := make(map[types.EntityID]struct{})
	out := make([]types.EntityID, 0)
	for _, raw := range raws {
		for entity := range m.byTag[Normalize(raw)] {
			if _, dup := seen[entity]; dup {
				continue
			}
			seen[entity] = struct{}{}
			out = append(out, entity)
		}
	}
	return out
}

// AllTags returns every tag with at least one member, sorted.
func (m *Manager) AllTags() []string {
	out := make([]string, 0, len(m.byTag))
	for tag := range m.byTag {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// EntityCount returns the number of entities carrying the normalized form
// of raw.
func (m *Manager) EntityCount(raw string) int {
	return len(m.byTag[Normalize(raw)])
}

// Rename moves every member of old's bucket to new's bucket. A no-op when
// the two normalize identically; when new already has members the buckets
// are merged.
func (m *Manager) Rename(oldRaw, newRaw string) {
	oldTag, newTag := Normalize(oldRaw), Normalize(newRaw)
	if oldTag == newTag || oldTag == "" || newTag == "" {
		return
	}
	bucket, ok := m.byTag[oldTag]
	if !ok {
		return
	}
	for entity := range bucket {
		delete(m.byEntity[entity], oldTag)
		m.byEntity[entity][newTag] = struct{}{}
	}
	newBucket, ok := m.byTag[newTag]
	if !ok {
		m.byTag[newTag] = bucket
	} else {
		for entity := range bucket {
			newBucket[entity] = struct{}{}
		}
	}
	delete(m.byTag, oldTag)
}

// Serialize dumps the full entity->tags mapping. Tag lists are sorted so
// output is deterministic.
func (m *Manager) Serialize() map[types.EntityID][]string {
	out := make(map[types.EntityID][]string, len(m.byEntity))
	for entity := range m.byEntity {
		out[entity] = m.Tags(entity)
	}
	return out
}

// Deserialize replaces the manager's state with the given mapping. The
// inverse of Serialize: a serialize/clear/deserialize round-trip reproduces
// identical associations.
func (m *Manager) Deserialize(data map[types.EntityID][]string) {
	m.Clear()
	for entity, tags := range data {
		for _, tag := range tags {
			m.Add(entity, tag)
		}
	}
}

// Clear drops every tag association. Tied to scene disposal.
func (m *Manager) Clear() {
	m.byEntity = make(map[types.EntityID]map[string]struct{})
	m.byTag = make(map[string]map[types.EntityID]struct{})
}

// TagCount returns the number of distinct tags in use.
func (m *Manager) TagCount() int {
	return len(m.byTag)
}

func (m *Manager) removeFromBucket(tag string, entity types.EntityID) {
	bucket, ok := m.byTag[tag]
	if !ok {
		return
	}
	delete(bucket, entity)
	if len(bucket) == 0 {
		delete(m.byTag, tag)
	}
}
