package series

// More specific titles come before the shorter titles they contain
// (Max Heart before ふたりは, GoGo before 5).
var defaultSeriesRules = []Rule{
	{Match: "max heart", Label: "ふたりはプリキュア Max Heart"},
	{Match: "splash", Label: "ふたりはプリキュア Splash☆Star"},
	{Match: "ふたりは", Label: "ふたりはプリキュア"},
	{Match: "futari wa", Label: "ふたりはプリキュア"},
	{Match: "gogo", Label: "Yes!プリキュア5GoGo!"},
	{Match: "プリキュア5", Label: "Yes!プリキュア5"},
	{Match: "precure 5", Label: "Yes!プリキュア5"},
	{Match: "フレッシュ", Label: "フレッシュプリキュア!"},
	{Match: "fresh", Label: "フレッシュプリキュア!"},
	{Match: "ハートキャッチ", Label: "ハートキャッチプリキュア!"},
	{Match: "heartcatch", Label: "ハートキャッチプリキュア!"},
	{Match: "スイート", Label: "スイートプリキュア♪"},
	{Match: "suite", Label: "スイートプリキュア♪"},
	{Match: "スマイル", Label: "スマイルプリキュア!"},
	{Match: "smile", Label: "スマイルプリキュア!"},
	{Match: "ドキドキ", Label: "ドキドキ!プリキュア"},
	{Match: "doki doki", Label: "ドキドキ!プリキュア"},
	{Match: "ハピネスチャージ", Label: "ハピネスチャージプリキュア!"},
	{Match: "happinesscharge", Label: "ハピネスチャージプリキュア!"},
	{Match: "プリンセス", Label: "Go!プリンセスプリキュア"},
	{Match: "princess", Label: "Go!プリンセスプリキュア"},
	{Match: "魔法つかい", Label: "魔法つかいプリキュア!"},
	{Match: "mahou tsukai", Label: "魔法つかいプリキュア!"},
	{Match: "アラモード", Label: "キラキラ☆プリキュアアラモード"},
	{Match: "a la mode", Label: "キラキラ☆プリキュアアラモード"},
	{Match: "hugっと", Label: "HUGっと!プリキュア"},
	{Match: "hugtto", Label: "HUGっと!プリキュア"},
	{Match: "トゥインクル", Label: "スター☆トゥインクルプリキュア"},
	{Match: "twinkle", Label: "スター☆トゥインクルプリキュア"},
	{Match: "ヒーリングっど", Label: "ヒーリングっど♥プリキュア"},
	{Match: "healin", Label: "ヒーリングっど♥プリキュア"},
	{Match: "トロピカル", Label: "トロピカル〜ジュ!プリキュア"},
	{Match: "tropical", Label: "トロピカル〜ジュ!プリキュア"},
	{Match: "デリシャスパーティ", Label: "デリシャスパーティ♡プリキュア"},
	{Match: "delicious party", Label: "デリシャスパーティ♡プリキュア"},
	{Match: "ひろがるスカイ", Label: "ひろがるスカイ!プリキュア"},
	{Match: "soaring sky", Label: "ひろがるスカイ!プリキュア"},
	{Match: "わんだふる", Label: "わんだふるぷりきゅあ!"},
	{Match: "wonderful", Label: "わんだふるぷりきゅあ!"},
	{Match: "キミとアイドル", Label: "キミとアイドルプリキュア♪"},
	{Match: "オールスターズ", Label: "プリキュアオールスターズ"},
	{Match: "all stars", Label: "プリキュアオールスターズ"},
}

// Ending and insert-song rules precede the generic theme-song rule so that
// "エンディング主題歌" is an ending rather than an opening.
var defaultTypeRules = []Rule{
	{Match: "オープニング", Label: TypeOpening},
	{Match: "opening", Label: TypeOpening},
	{Match: "エンディング", Label: TypeEnding},
	{Match: "ending", Label: TypeEnding},
	{Match: "挿入歌", Label: TypeInsertSong},
	{Match: "insert song", Label: TypeInsertSong},
	{Match: "主題歌", Label: TypeOpening},
}

// DefaultSeriesRules returns a copy of the built-in series table.
func DefaultSeriesRules() []Rule {
	out := make([]Rule, len(defaultSeriesRules))
	copy(out, defaultSeriesRules)
	return out
}

// DefaultTypeRules returns a copy of the built-in type table.
func DefaultTypeRules() []Rule {
	out := make([]Rule, len(defaultTypeRules))
	copy(out, defaultTypeRules)
	return out
}
