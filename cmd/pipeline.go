package cmd

import (
	"fmt"

	"github.com/qorvid/cursor-atlas/internal"
)

// pipelineResult is everything downstream commands need from one full run:
// assembled conversations, their attributions, and the workspace catalog.
type pipelineResult struct {
	Conversations []*internal.Conversation
	Attributions  []internal.Attribution
	Catalog       *internal.Catalog
	DBPath        string
}

// runPipeline loads raw data from storage, resolves each conversation to a
// workspace, and assembles timelines. When useCache is true and the cache
// matches the current database, the cached result is returned instead (the
// catalog is still rebuilt, since it only depends on workspaceStorage).
func runPipeline(useCache bool) (*pipelineResult, error) {
	paths, err := internal.GetStoragePaths(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage paths: %w", err)
	}

	var cleanup func() error
	if copyDB {
		paths, cleanup, err = internal.CopyStoragePaths(paths)
		if err != nil {
			return nil, fmt.Errorf("failed to copy database files: %w", err)
		}
		defer func() {
			if cleanup != nil {
				if err := cleanup(); err != nil {
					internal.LogWarn("Failed to clean up temporary files: %v", err)
				}
			}
		}()
	}

	if !paths.GlobalStorageExists() {
		return nil, fmt.Errorf("no Cursor database found at %s", paths.GlobalDBPath())
	}
	dbPath := paths.GlobalDBPath()

	workspaces, err := internal.DetectWorkspaces(paths.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspaces: %w", err)
	}
	catalog := internal.NewCatalog(workspaces)
	internal.LogInfo("Found %d workspace(s)", catalog.Len())

	cacheManager := internal.NewCacheManager(cfg.CacheDir)
	if useCache && cacheManager.IsValid(dbPath) {
		conversations, attributions, err := cacheManager.LoadAll()
		if err == nil && len(conversations) > 0 {
			internal.LogInfo("Loaded %d conversation(s) from cache", len(conversations))
			return &pipelineResult{
				Conversations: conversations,
				Attributions:  attributions,
				Catalog:       catalog,
				DBPath:        dbPath,
			}, nil
		}
		internal.LogWarn("Cache unusable, reading storage: %v", err)
	}

	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	direct := internal.LoadDirectComposerIndex(paths.BasePath, workspaces)
	internal.LogDebug("Direct composer index has %d entries", len(direct))

	storage := internal.NewStorage(db)
	records, diffs, err := storage.LoadRecords(direct)
	if err != nil {
		return nil, err
	}
	internal.LogInfo("Loaded %d conversation record(s)", len(records))

	attributions := internal.ResolveAll(records, catalog)
	conversations := internal.DedupeConversations(internal.AssembleAll(records, diffs))

	if useCache {
		if err := cacheManager.Save(conversations, attributions, dbPath); err != nil {
			internal.LogWarn("Failed to save cache: %v", err)
		}
	}

	return &pipelineResult{
		Conversations: conversations,
		Attributions:  attributions,
		Catalog:       catalog,
		DBPath:        dbPath,
	}, nil
}
