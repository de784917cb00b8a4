// Package scenecore is the entity/component data store at the heart of a 3D
// scene editor. A Scene owns the authoritative set of live entities, their
// typed component data, the parent/child hierarchy, cross-session persistent
// ids, and the secondary indices that answer editor queries without scanning.
// The renderer, UI panels, and scripting layers are collaborators: they read
// through the query facade and mutate through the Scene, never around it.
package scenecore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meshforge/scenecore/component"
	"github.com/meshforge/scenecore/events"
	"github.com/meshforge/scenecore/ident"
	"github.com/meshforge/scenecore/index"
	slog "github.com/meshforge/scenecore/log"
	"github.com/meshforge/scenecore/query"
	"github.com/meshforge/scenecore/scenedoc"
	"github.com/meshforge/scenecore/sceneql"
	"github.com/meshforge/scenecore/server"
	servertypes "github.com/meshforge/scenecore/server/types"
	"github.com/meshforge/scenecore/stage"
	"github.com/meshforge/scenecore/statsd"
	"github.com/meshforge/scenecore/storage/redis"
	"github.com/meshforge/scenecore/store"
	"github.com/meshforge/scenecore/tag"
	"github.com/meshforge/scenecore/types"
)

const RedisDialTimeOut = 15

var _ servertypes.Provider = &Scene{} //nolint:exhaustruct

// Scene is the explicit context object every operation goes through. There
// are no package-level singletons: two scenes in one process are fully
// independent, and everything a scene owns dies with it.
type Scene struct {
	name      string
	namespace string

	// Storage
	redisStorage *redis.Storage // nil when running fully in memory

	// Networking
	server         *server.Server
	serverOptions  []server.Option
	serverDisabled bool

	// Core modules
	sceneStage       *stage.Manager
	componentManager *component.Manager
	bus              *events.Bus
	eventHub         *events.EventHub
	store            *store.Store
	ids              *ident.Service
	tags             *tag.Manager
	entities         *index.EntityIndex
	components       *index.ComponentIndex
	hierarchy        *index.HierarchyIndex
	query            *query.Facade

	log zerolog.Logger
}

// NewScene creates a new Scene. Configuration comes from the environment
// (see SceneConfig); a non-empty REDIS_ADDRESS attaches the persistence
// adapter for schema pinning and scene documents.
func NewScene(opts ...SceneOption) (*Scene, error) {
	serverOptions, sceneOptions := separateOptions(opts)

	// Load config. Fallback value is used if it's not set.
	cfg, err := loadSceneConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config to create scene")
	}

	var redisStorage *redis.Storage
	var schemaStorage component.SchemaStorage
	if cfg.RedisAddress != "" {
		redisMetaStore := redis.NewRedisStorage(redis.Options{
			Addr:        cfg.RedisAddress,
			Password:    cfg.RedisPassword,
			DB:          0,                              // use default DB
			DialTimeout: RedisDialTimeOut * time.Second, // Increase startup dial timeout
		}, cfg.SceneNamespace)
		redisStorage = &redisMetaStore
		schemaStorage = redisStorage
	}

	bus := events.NewBus()
	ids := ident.NewService()
	tags := tag.NewManager()
	hierarchy := index.NewHierarchyIndex()
	entities := index.NewEntityIndex()
	components := index.NewComponentIndex()
	componentManager := component.NewManager(schemaStorage)

	scene := &Scene{
		name:      cfg.SceneName,
		namespace: cfg.SceneNamespace,

		// Storage
		redisStorage: redisStorage,

		// Networking
		server:        nil, // Will be initialized in Start
		serverOptions: append([]server.Option{server.WithPort(cfg.ScenePort)}, serverOptions...),

		// Core modules
		sceneStage:       stage.NewManager(),
		componentManager: componentManager,
		bus:              bus,
		ids:              ids,
		tags:             tags,
		entities:         entities,
		components:       components,
		hierarchy:        hierarchy,

		log: zerolog.New(os.Stdout).With().Timestamp().Logger().Level(cfg.logLevel()),
	}

	// Apply options before the store and hub are built: they capture the
	// scene logger, so WithLogger has to run first.
	for _, opt := range sceneOptions {
		opt(scene)
	}

	scene.store = store.New(bus, ids, tags, hierarchy, scene.log)
	scene.eventHub = events.NewEventHub(scene.log)
	scene.query = query.NewFacade(scene.store, componentManager, entities, components, hierarchy, tags)

	log.Info().Msgf("Creating a new scene %q in namespace %q", scene.name, scene.namespace)

	// The indices are pure event subscribers: each payload carries everything
	// the index needs, so index maintenance never reads the store.
	events.On(bus, func(ev events.EntityCreated) { entities.Add(ev.EntityID) })
	events.On(bus, func(ev events.EntityDestroyed) { entities.Remove(ev.EntityID) })
	events.On(bus, func(ev events.ComponentAdded) { components.Add(ev.ComponentID, ev.EntityID) })
	events.On(bus, func(ev events.ComponentRemoved) { components.Remove(ev.ComponentID, ev.EntityID) })

	// Relay the full event stream to websocket consumers. The hub only ever
	// sees encoded copies; it cannot reach back into the store.
	bus.Subscribe(func(ev events.Event) {
		if emitErr := scene.eventHub.EmitEvent(ev); emitErr != nil {
			scene.log.Warn().Err(emitErr).Msg("failed to relay event to hub")
		}
	})

	var metricTags []string
	metricTags = append(metricTags, "scene_namespace:"+scene.namespace)
	metricTags = append(metricTags, "scene_name:"+scene.name)

	if cfg.StatsdAddress != "" || cfg.TraceAddress != "" {
		if err = statsd.Init(cfg.StatsdAddress, cfg.TraceAddress, metricTags); err != nil {
			return nil, eris.Wrap(err, "unable to init statsd")
		}
	} else {
		log.Logger.Warn().Msg("statsd is disabled")
	}

	return scene, nil
}

// Start finishes scene setup: components can no longer be registered, the
// persisted document for this scene (if any) is loaded, and the inspector
// server begins serving. Unlike a game loop there is nothing to drive here;
// the editor owns the frame loop and calls FlushEvents once per frame.
func (s *Scene) Start() error {
	// Scene stage: Init -> Loading
	ok := s.sceneStage.CompareAndSwap(stage.Init, stage.Loading)
	if !ok {
		return eris.New("scene has already been started")
	}

	if s.componentManager.ComponentCount() == 0 {
		log.Warn().Msg("No components registered")
	}

	// Reopen the stored document when persistence is attached. A missing
	// document just means this scene has never been saved.
	if s.redisStorage != nil {
		if err := s.loadStored(s.name); err != nil && !eris.Is(err, redis.ErrNoSceneFound) {
			return eris.Wrap(err, "failed to load stored scene")
		}
	}

	if !s.serverDisabled {
		var err error
		s.server, err = server.New(s, s.eventHub, s.serverOptions...)
		if err != nil {
			return err
		}
	}

	// Scene stage: Loading -> Ready
	s.sceneStage.Store(stage.Ready)

	slog.Scene(&s.log, s.componentManager, s.store.EntityCount(), zerolog.InfoLevel)

	if s.server != nil {
		s.startServer()
	}
	s.handleShutdown()
	return nil
}

func (s *Scene) startServer() {
	go func() {
		if err := s.server.Serve(); errors.Is(err, http.ErrServerClosed) {
			log.Info().Err(err).Msgf("the server has been closed: %s", eris.ToString(err, true))
		} else if err != nil {
			log.Fatal().Err(err).Msgf("the server has failed: %s", eris.ToString(err, true))
		}
	}()
}

// Shutdown releases everything the scene holds: the inspector server, the
// websocket hub, the storage connection, and the statsd client. A scene that
// was never started only closes its hub and storage.
func (s *Scene) Shutdown() error {
	current := s.sceneStage.Current()
	if current == stage.ShutDown {
		return nil
	}
	ok := s.sceneStage.CompareAndSwap(stage.Ready, stage.ShuttingDown) ||
		s.sceneStage.CompareAndSwap(stage.Init, stage.ShuttingDown)
	if !ok {
		return eris.Errorf("cannot shut down from stage %s", current)
	}
	defer s.sceneStage.Store(stage.ShutDown)

	log.Info().Msg("Shutting down scene")

	if s.server != nil {
		// The server shuts the event hub down with it.
		if err := s.server.Shutdown(); err != nil {
			return err
		}
	} else {
		s.eventHub.Shutdown()
	}

	if s.redisStorage != nil {
		log.Info().Msg("Closing storage connection.")
		if err := s.redisStorage.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage connection.")
			return err
		}
	}

	if err := statsd.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close statsd client.")
	}

	log.Info().Msg("Successfully shut down scene.")
	return nil
}

func (s *Scene) handleShutdown() {
	signalChannel := make(chan os.Signal, 1)
	go func() {
		signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
		for sig := range signalChannel {
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				err := s.Shutdown()
				if err != nil {
					log.Err(err).Msgf("There was an error during shutdown.")
				}
				return
			}
		}
	}()
}

// Name returns the scene's display name, used as the storage key for its
// persisted document.
func (s *Scene) Name() string {
	return s.name
}

// Namespace returns the scene's namespace.
func (s *Scene) Namespace() string {
	return s.namespace
}

// Stage returns the scene's lifecycle stage.
func (s *Scene) Stage() stage.Stage {
	return s.sceneStage.Current()
}

// IsReady reports whether the scene has been started and not yet shut down.
func (s *Scene) IsReady() bool {
	return s.sceneStage.Current() == stage.Ready
}

// Query returns the read-only query facade over the scene's indices.
func (s *Scene) Query() *query.Facade {
	return s.query
}

// Bus exposes the scene's event bus for in-process subscribers. Use
// events.On to subscribe to a single variant.
func (s *Scene) Bus() *events.Bus {
	return s.bus
}

// EventHub exposes the websocket fanout hub.
func (s *Scene) EventHub() *events.EventHub {
	return s.eventHub
}

// FlushEvents pushes every event queued since the last flush out to the
// websocket consumers. The editor calls this once per frame, after its
// update pass.
func (s *Scene) FlushEvents() {
	s.eventHub.FlushEvents()
}

// ValidateIndices recomputes every index from ground truth and reports
// mismatches. Diagnostic only; it never mutates and never errors.
func (s *Scene) ValidateIndices() []index.Discrepancy {
	return s.query.ValidateIndices()
}

// Clear removes every entity, component, tag, and reservation from the
// scene, returning it to the state NewScene left it in. Registered component
// types survive; they belong to the session, not the document.
func (s *Scene) Clear() {
	s.store.Clear()
	s.entities.Clear()
	s.components.Clear()
}

// --- inspector server provider surface ---

// EntityCount returns the number of live entities. O(1).
func (s *Scene) EntityCount() int {
	return s.store.EntityCount()
}

// Entities returns every live entity id in ascending order.
func (s *Scene) Entities() []types.EntityID {
	return s.store.Entities()
}

// Components returns the component values held by an entity.
func (s *Scene) Components(id types.EntityID) []types.Component {
	return s.store.Components(id)
}

// GetComponentByName returns the metadata registered for a component type
// name.
func (s *Scene) GetComponentByName(name string) (types.ComponentMetadata, error) {
	return s.componentManager.GetComponentByName(name)
}

// RegisteredComponents returns the metadata of every registered component
// type.
func (s *Scene) RegisteredComponents() []types.ComponentMetadata {
	return s.componentManager.GetComponents()
}

// AllTags returns every tag currently applied to at least one entity.
func (s *Scene) AllTags() []string {
	return s.tags.AllTags()
}

// EntitySnapshot assembles the full inspector view of one entity.
func (s *Scene) EntitySnapshot(id types.EntityID) (types.DebugStateElement, error) {
	name, err := s.store.Name(id)
	if err != nil {
		return types.DebugStateElement{}, err
	}
	pid, err := s.store.PersistentID(id)
	if err != nil {
		return types.DebugStateElement{}, err
	}
	snapshots, err := s.store.ComponentsForEntity(id)
	if err != nil {
		return types.DebugStateElement{}, err
	}

	element := types.DebugStateElement{
		ID:           id,
		PersistentID: pid,
		Name:         name,
		Tags:         s.tags.Tags(id),
		Components:   make(map[string]json.RawMessage, len(snapshots)),
	}
	for _, snapshot := range snapshots {
		element.Components[snapshot.Name] = snapshot.Data
	}
	if parent, ok := s.store.Parent(id); ok {
		element.Parent = &parent
	}
	return element, nil
}

// DebugState returns the inspector view of the whole scene, ordered by
// entity id.
func (s *Scene) DebugState() (types.DebugStateResponse, error) {
	result := make(types.DebugStateResponse, 0, s.store.EntityCount())
	for _, id := range s.store.Entities() {
		element, err := s.EntitySnapshot(id)
		if err != nil {
			return nil, err
		}
		result = append(result, element)
	}
	return result, nil
}

// RunQuery parses a text query and returns the matching entity ids in
// ascending order.
func (s *Scene) RunQuery(queryText string) ([]types.EntityID, error) {
	start := time.Now()
	match, err := sceneql.Parse(queryText, sceneql.Resolver{
		ComponentByName: s.GetComponentByName,
		HasTag:          s.tags.Has,
	})
	if err != nil {
		return nil, err
	}
	matches := make([]types.EntityID, 0)
	for _, id := range s.store.Entities() {
		if match.MatchesEntity(id, s.store.Components(id)) {
			matches = append(matches, id)
		}
	}
	statsd.EmitOpStat(start, "run_query")
	return matches, nil
}

// --- persistence ---

// Snapshot serializes the scene into a document: every entity with its
// persistent id, name, tags, encoded components, and parent reference by
// persistent id so the document stays stable across sessions.
func (s *Scene) Snapshot() (*scenedoc.Document, error) {
	doc := scenedoc.New(s.name)
	for _, id := range s.store.Entities() {
		name, err := s.store.Name(id)
		if err != nil {
			return nil, err
		}
		pid, err := s.store.PersistentID(id)
		if err != nil {
			return nil, err
		}
		snapshots, err := s.store.ComponentsForEntity(id)
		if err != nil {
			return nil, err
		}

		record := scenedoc.EntityRecord{
			PersistentID: pid,
			Name:         name,
			Tags:         s.tags.Tags(id),
		}
		if len(snapshots) > 0 {
			record.Components = make(map[string]json.RawMessage, len(snapshots))
			for _, snapshot := range snapshots {
				record.Components[snapshot.Name] = snapshot.Data
			}
		}
		if parent, ok := s.store.Parent(id); ok {
			parentPID, err := s.store.PersistentID(parent)
			if err != nil {
				return nil, err
			}
			record.Parent = parentPID
		}
		doc.Entities = append(doc.Entities, record)
	}
	return doc, nil
}

// Instantiate replays a document into the scene: entities are created first
// (keeping a document's persistent ids, generating fresh ones where the
// document has none), then components are attached through the same
// validation as any other caller, then parent references are resolved by
// persistent id. Instantiating adds to the scene; it does not clear it.
func (s *Scene) Instantiate(doc *scenedoc.Document) error {
	createdByPID := make(map[string]types.EntityID, len(doc.Entities))
	created := make([]types.EntityID, len(doc.Entities))

	for i, record := range doc.Entities {
		var opts []store.CreateOption
		if record.PersistentID != "" {
			opts = append(opts, store.WithPersistentID(record.PersistentID))
		}
		id, err := s.store.CreateEntity(record.Name, opts...)
		if err != nil {
			return eris.Wrap(err, fmt.Sprintf("failed to instantiate entity %d", i))
		}
		created[i] = id
		pid, err := s.store.PersistentID(id)
		if err != nil {
			return err
		}
		createdByPID[pid] = id

		metas := make([]types.ComponentMetadata, 0, len(record.Components))
		for _, componentName := range sortedKeys(record.Components) {
			if err := s.AddComponentByName(id, componentName, record.Components[componentName]); err != nil {
				return eris.Wrap(err, fmt.Sprintf("failed to instantiate component %q", componentName))
			}
			meta, err := s.componentManager.GetComponentByName(componentName)
			if err != nil {
				return err
			}
			metas = append(metas, meta)
		}
		if len(record.Tags) > 0 {
			s.tags.Set(id, record.Tags)
		}
		slog.Entity(&s.log, zerolog.DebugLevel, id, metas, record.Tags)
	}

	// Second pass: parents. A reference that is not in the document may name
	// an entity already in the scene (an additive load under a live root).
	for i, record := range doc.Entities {
		if record.Parent == "" {
			continue
		}
		parent, ok := createdByPID[record.Parent]
		if !ok {
			parent, ok = s.store.EntityByPersistentID(record.Parent)
		}
		if !ok {
			return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("parent %q not found", record.Parent))
		}
		if err := s.store.SetParent(created[i], parent); err != nil {
			return err
		}
	}
	return nil
}

// Save snapshots the scene and writes the document to storage under the
// scene's name.
func (s *Scene) Save() error {
	if s.redisStorage == nil {
		return eris.New("no scene storage attached")
	}
	start := time.Now()
	doc, err := s.Snapshot()
	if err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := s.redisStorage.SaveScene(s.name, data); err != nil {
		return err
	}
	statsd.EmitOpStat(start, "save")
	slog.CreateSceneLogger(&s.log, s.name).Info().
		Int("entities", s.store.EntityCount()).Msg("scene saved")
	return nil
}

// Load replaces the scene's contents with the named stored document. The
// scene takes the document's name so a following Save writes back to the
// same key.
func (s *Scene) Load(name string) error {
	if s.redisStorage == nil {
		return eris.New("no scene storage attached")
	}
	s.Clear()
	if err := s.loadStored(name); err != nil {
		return err
	}
	s.name = name
	return nil
}

func (s *Scene) loadStored(name string) error {
	start := time.Now()
	data, err := s.redisStorage.LoadScene(name)
	if err != nil {
		return err
	}
	doc, err := scenedoc.Decode(data)
	if err != nil {
		return err
	}
	if err := s.Instantiate(doc); err != nil {
		return err
	}
	statsd.EmitOpStat(start, "load")
	slog.CreateSceneLogger(&s.log, name).Info().
		Int("entities", s.store.EntityCount()).Msg("scene loaded")
	return nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
