// Package essaykeeper is a local-first persistence core for draft
// documents: debounced autosave into an embedded bolt store, bounded
// snapshot history with undo/redo, and a retrying coordinator that
// replicates drafts to a remote document store.
//
// Библиотека не имеет собственного процесса: её встраивает слой
// редактора. Типичная сборка:
//
//	cfg, err := config.Load("essaykeeper.yaml")
//	store, err := boltdb.New(ctx, dbPath)
//	drafts := autosave.NewManager(store, cfg.Autosave, logger)
//	history := snapshot.NewManager(store, cfg.Snapshot, logger)
//	session := remote.NewSession()
//	client := remote.NewClient(baseURL)
//	coord := syncer.NewCoordinator(client, session, store, cfg.Sync, logger)
//
// Каждый менеджер независим и общается с остальными только через
// общее хранилище и события.
package essaykeeper
