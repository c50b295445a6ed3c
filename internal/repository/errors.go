package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// DBに到達できない（接続失敗・切断）
	ErrConnection = errors.New("store unreachable")

	// 外部キーで参照されていて消せない
	ErrReferenced = errors.New("still referenced")
)
