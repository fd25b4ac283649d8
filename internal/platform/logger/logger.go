// Package logger は zap による構造化ログの初期化を提供します。
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New はアプリケーション用の SugaredLogger を生成します。
// production が真の場合は JSON 出力、偽の場合は開発者向け出力になります。
func New(production bool) (*zap.SugaredLogger, error) {
	var (
		log *zap.Logger
		err error
	)

	if production {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("logger: build zap logger: %w", err)
	}

	return log.Sugar(), nil
}

// Nop はテストなどでログ出力を抑止したい場合に使う no-op ロガーです。
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
