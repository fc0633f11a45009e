// Package site holds the fixed copy, links and image paths of the
// restaurant page. Nothing here is fetched at runtime.
package site

import (
	"strings"
	"time"
)

const (
	Name      = "おばんざいアゲハ食堂"
	Phone     = "070-8342-8452"
	PhoneTel  = "tel:07083428452"
	Instagram = "https://www.instagram.com/agehashokudou/"
	MapURL    = "https://share.google/5fQELDgst3HRuAtNK"

	PostalCode = "〒722-2323"
	Address    = "広島県尾道市因島土生町1896-17 1F"

	// CarouselInterval is how long each hero image stays up.
	CarouselInterval = 5 * time.Second

	ReservationNote = "※ お席のご予約も承っております。"
	ChangeNote      = "※ 貸切やイベント開催により変更がございます。"
)

// NavItem is one entry of the overlay navigation and the footer list.
type NavItem struct {
	Num   string
	Label string
	Link  string
}

// Nav is the section navigation in page order.
var Nav = []NavItem{
	{Num: "01", Label: "Concept", Link: "#concept"},
	{Num: "02", Label: "Menu", Link: "#menu"},
	{Num: "03", Label: "Visual", Link: "#visual"},
	{Num: "04", Label: "Access", Link: "#access"},
}

// Copy texts. Newlines are rendered as line breaks.
const (
	HeroMain    = "自然と季節が奏でる、小鉢のひと皿ひと皿。\nからだが喜ぶ、美しい調和を。"
	HeroSub     = "健やかさの源は、穏やかな島の自然に宿る。\nおばんざいアゲハ食堂で、因島の旬をごゆっくり。"
	ConceptText = "一皿に込めた季節の香りが、五感をやさしく満たす。\n心とからだがほどける、上質なくつろぎを。"
	MenuText    = "旬が宿すいのちを、そのまま小鉢に。\n「美味しくて、からだにやさしい」をまっすぐに追求しています。"
	AccessText  = "瀬戸内海に囲まれた\n自然との調和を感じる場所"
)

// Directions lists how to reach the restaurant.
var Directions = []string{
	"JR「尾道駅」から因島行きバスで 約25分",
	"しまなみ海道「因島北IC」より車で 約10〜15分",
	"しまなみ海道サイクリングロードから 自転車でそのまま来店可能",
}

// MenuLine is one line of the menu teaser. Detail lines are shown under
// the name.
type MenuLine struct {
	Name   string
	Detail []string
	Price  string
}

var Menu = []MenuLine{
	{Name: "アゲハ小鉢定食", Price: "¥1,650"},
	{Name: "喜びとしてのイエロープリン (かぼちゃプリン)", Detail: []string{"オリジナルロゴステッカー付"}, Price: "¥800"},
	{Name: "ブラジルコーヒー", Price: "¥440"},
}

// Hours is one opening-hours row.
type Hours struct {
	Days string
	Time string
}

var OpeningHours = []Hours{
	{Days: "月〜木", Time: "8:00〜17:00"},
	{Days: "金・土", Time: "8:00〜21:00"},
}

// RegularHoliday is shown under the calendar.
const RegularHoliday = "日曜日"

// Image paths, served from the configured images directory.
var (
	HeroImages = []string{
		"/images/hero/hero-1.webp",
		"/images/hero/hero-2.webp",
		"/images/hero/hero-3.png",
	}
	ConceptImage = "/images/concept/concept.jpg"
	MenuImage    = "/images/menu/menu.webp"
	AccessImage  = "/images/access/innoshima.jpg"
	VisualImages = []string{
		"/images/visual/visual-1.webp",
		"/images/visual/visual-2.png",
		"/images/visual/visual-3.png",
		"/images/visual/visual-4.png",
		"/images/visual/visual-6.png",
		"/images/visual/visual-5.webp",
	}
)

// Lines splits copy text on newlines for templates.
func Lines(s string) []string {
	return strings.Split(s, "\n")
}
