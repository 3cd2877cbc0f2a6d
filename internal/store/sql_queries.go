package store

const (
	entityColumns = `
		id,
		kind,
		seq,
		sync_status,
		sync_error,
		sync_retryable,
		sync_attempts,
		last_sync_attempt,
		updated_at_local,
		updated_at_remote,
		deleted,
		payload,
		remote_payload`

	getEntityByID = `
		SELECT` + entityColumns + `
		FROM entities
		WHERE id = $1;`

	getRemappedID = `
		SELECT new_id
		FROM id_remaps
		WHERE old_id = $1;`

	insertEntity = `
		INSERT INTO entities (
			id,
			kind,
			seq,
			sync_status,
			sync_error,
			sync_retryable,
			sync_attempts,
			last_sync_attempt,
			updated_at_local,
			updated_at_remote,
			deleted,
			payload,
			remote_payload
		) VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM entities),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		);`

	updateEntityLocal = `
		UPDATE entities SET
			seq               = (SELECT COALESCE(MAX(seq), 0) + 1 FROM entities),
			sync_status       = $1,
			sync_error        = '',
			sync_retryable    = 1,
			sync_attempts     = 0,
			updated_at_local  = $2,
			payload           = $3,
			remote_payload    = NULL
		WHERE id = $4 AND sync_status != 'conflict';`

	updateEntityRemote = `
		UPDATE entities SET
			sync_status       = $1,
			sync_error        = '',
			sync_retryable    = 1,
			sync_attempts     = 0,
			updated_at_remote = $2,
			payload           = $3,
			remote_payload    = NULL
		WHERE id = $4 AND seq = $5 AND sync_status != 'conflict';`

	setEntityRemoteStamp = `
		UPDATE entities SET
			updated_at_remote = $1
		WHERE id = $2;`

	markEntityStatus = `
		UPDATE entities SET
			sync_status       = $1,
			sync_error        = $2,
			last_sync_attempt = $3
		WHERE id = $4;`

	markEntityError = `
		UPDATE entities SET
			sync_status       = 'error',
			sync_error        = $1,
			sync_retryable    = $2,
			sync_attempts     = sync_attempts + 1,
			last_sync_attempt = $3
		WHERE id = $4;`

	markEntitySynced = `
		UPDATE entities SET
			sync_status       = 'synced',
			sync_error        = '',
			sync_retryable    = 1,
			sync_attempts     = 0,
			last_sync_attempt = $1
		WHERE id = $2;`

	resolvePickLocal = `
		UPDATE entities SET
			seq              = (SELECT COALESCE(MAX(seq), 0) + 1 FROM entities),
			sync_status      = 'pending',
			sync_error       = '',
			sync_retryable   = 1,
			sync_attempts    = 0,
			updated_at_local = $1,
			remote_payload   = NULL
		WHERE id = $2;`

	resolvePickRemote = `
		UPDATE entities SET
			sync_status       = 'synced',
			sync_error        = '',
			sync_retryable    = 1,
			sync_attempts     = 0,
			updated_at_remote = $1,
			payload           = remote_payload,
			remote_payload    = NULL
		WHERE id = $2;`

	resolveMerged = `
		UPDATE entities SET
			seq              = (SELECT COALESCE(MAX(seq), 0) + 1 FROM entities),
			sync_status      = 'pending',
			sync_error       = '',
			sync_retryable   = 1,
			sync_attempts    = 0,
			updated_at_local = $1,
			payload          = $2,
			remote_payload   = NULL
		WHERE id = $3;`

	markEntityConflict = `
		UPDATE entities SET
			sync_status       = 'conflict',
			sync_error        = '',
			last_sync_attempt = $1,
			remote_payload    = $2
		WHERE id = $3;`

	listPendingEntities = `
		SELECT` + entityColumns + `
		FROM entities
		WHERE sync_status = 'pending'
		   OR (sync_status = 'error' AND sync_retryable = 1 AND sync_attempts < $1)
		ORDER BY seq ASC;`

	tombstoneEntity = `
		UPDATE entities SET
			deleted          = 1,
			seq              = (SELECT COALESCE(MAX(seq), 0) + 1 FROM entities),
			sync_status      = 'pending',
			sync_error       = '',
			sync_retryable   = 1,
			sync_attempts    = 0,
			updated_at_local = $1
		WHERE id = $2;`

	restoreEntity = `
		UPDATE entities SET
			deleted          = 0,
			seq              = (SELECT COALESCE(MAX(seq), 0) + 1 FROM entities),
			sync_status      = 'pending',
			sync_error       = '',
			sync_retryable   = 1,
			sync_attempts    = 0,
			updated_at_local = $1
		WHERE id = $2;`

	purgeEntity = `
		DELETE FROM entities
		WHERE id = $1;`

	countEntityStatuses = `
		SELECT
			COUNT(CASE WHEN sync_status IN ('pending', 'error') THEN 1 END),
			COUNT(CASE WHEN sync_status = 'conflict' THEN 1 END)
		FROM entities;`

	rewriteEntityID = `
		UPDATE entities SET id = $1 WHERE id = $2;`

	insertIDRemap = `
		INSERT INTO id_remaps (old_id, new_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (old_id) DO UPDATE SET new_id = excluded.new_id;`

	listNotePayloads = `
		SELECT id, payload
		FROM entities
		WHERE kind = 'note';`

	rewriteUploadNoteID = `
		UPDATE upload_tasks SET note_id = $1 WHERE note_id = $2;`

	rewritePayload = `
		UPDATE entities SET payload = $1 WHERE id = $2;`
)

const (
	uploadColumns = `
		id,
		local_path,
		file_size,
		status,
		progress,
		last_error,
		attempts,
		note_id,
		remote_key,
		remote_url,
		enqueued_at,
		updated_at`

	insertUploadTask = `
		INSERT INTO upload_tasks (
			id,
			local_path,
			file_size,
			status,
			progress,
			last_error,
			attempts,
			note_id,
			remote_key,
			remote_url,
			enqueued_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	getUploadTaskByID = `
		SELECT` + uploadColumns + `
		FROM upload_tasks
		WHERE id = $1;`

	listUploadTasks = `
		SELECT` + uploadColumns + `
		FROM upload_tasks
		ORDER BY enqueued_at ASC, id ASC;`

	listPendingUploadTasks = `
		SELECT` + uploadColumns + `
		FROM upload_tasks
		WHERE status = 'pending'
		   OR (status = 'failed' AND attempts < $1)
		ORDER BY enqueued_at ASC, id ASC;`

	updateUploadProgress = `
		UPDATE upload_tasks SET
			progress   = MAX(progress, $1),
			updated_at = $2
		WHERE id = $3;`

	markUploadStatus = `
		UPDATE upload_tasks SET
			status     = $1,
			progress   = $2,
			updated_at = $3
		WHERE id = $4;`

	markUploadFailed = `
		UPDATE upload_tasks SET
			status     = 'failed',
			last_error = $1,
			attempts   = attempts + 1,
			updated_at = $2
		WHERE id = $3;`

	setUploadRemoteKey = `
		UPDATE upload_tasks SET
			remote_key = $1,
			updated_at = $2
		WHERE id = $3;`

	markUploadCompleted = `
		UPDATE upload_tasks SET
			status     = 'completed',
			progress   = 1,
			last_error = '',
			remote_url = $1,
			updated_at = $2
		WHERE id = $3;`

	retryAllUploads = `
		UPDATE upload_tasks SET
			status     = 'pending',
			progress   = 0,
			last_error = '',
			updated_at = $1
		WHERE status = 'failed' AND attempts < $2;`

	deleteUploadTask = `
		DELETE FROM upload_tasks
		WHERE id = $1;`

	totalPendingUploadBytes = `
		SELECT COALESCE(SUM(file_size), 0)
		FROM upload_tasks
		WHERE status != 'completed';`

	countPendingUploads = `
		SELECT COUNT(*)
		FROM upload_tasks
		WHERE status != 'completed';`

	listPurgeableUploads = `
		SELECT` + uploadColumns + `
		FROM upload_tasks t
		WHERE t.status = 'completed'
		  AND t.local_path != ''
		  AND (
			t.note_id IS NULL
			OR EXISTS (
				SELECT 1 FROM entities e
				WHERE e.id = t.note_id AND e.sync_status = 'synced'
			)
		  );`

	clearUploadLocalPath = `
		UPDATE upload_tasks SET
			local_path = '',
			updated_at = $1
		WHERE id = $2;`
)
