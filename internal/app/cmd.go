package app

// Command はアプリケーションの起動モードを表す。
// 1つのバイナリをサブコマンドでAPIサーバー・ワーカー・
// マイグレーション・ヘルスチェックに切り替える。
type Command string

const (
	// CommandServe はAPIサーバーモード。
	CommandServe Command = "serve"
	// CommandWorker はセッションクリーンアップワーカーモード。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中のサーバーへのヘルスチェックを行って終了する。
	// シェルを持たないdistrolessイメージのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

// knownCommands は受け付けるサブコマンドの集合。
var knownCommands = map[Command]bool{
	CommandServe:       true,
	CommandWorker:      true,
	CommandMigrate:     true,
	CommandHealthcheck: true,
}

// ParseCommand はコマンドライン引数の先頭をサブコマンドとして解析する。
// 引数なしと未知のコマンドはCommandServeにフォールバックする。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd := Command(args[0]); knownCommands[cmd] {
		return cmd
	}
	return CommandServe
}
