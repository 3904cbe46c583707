package keyword

// defaultKeywords lists the franchise names, their localized spellings, and
// the series titles. Entries are matched as lower-cased substrings.
var defaultKeywords = []string{
	"プリキュア",
	"ぷりきゅあ",
	"precure",
	"pretty cure",
	"prettycure",
	"ふたりはプリキュア",
	"splash☆star",
	"yes!プリキュア5",
	"フレッシュプリキュア",
	"ハートキャッチプリキュア",
	"スイートプリキュア",
	"スマイルプリキュア",
	"ドキドキ!プリキュア",
	"ハピネスチャージプリキュア",
	"go!プリンセスプリキュア",
	"魔法つかいプリキュア",
	"プリキュアアラモード",
	"hugっと!プリキュア",
	"スター☆トゥインクルプリキュア",
	"ヒーリングっど",
	"トロピカル〜ジュ",
	"デリシャスパーティ",
	"ひろがるスカイ",
	"わんだふるぷりきゅあ",
	"キミとアイドルプリキュア",
	"プリキュアオールスターズ",
}
