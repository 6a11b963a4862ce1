package llm

import (
	"strings"

	"github.com/techpal/backend-go/internal/models"
)

// fallbackTopics 话题及其关键词，按固定优先级排列，第一个命中的话题生效
var fallbackTopics = []struct {
	name     string
	keywords []string
}{
	{"greeting", []string{"hello", "hi", "hey", "howdy"}},
	{"computer", []string{"computer", "computers", "cpu", "laptop", "keyboard", "hardware"}},
	{"internet", []string{"internet", "web", "website", "online", "wifi", "browser"}},
	{"coding", []string{"code", "coding", "program", "programming", "python", "scratch", "javascript"}},
	{"safety", []string{"safe", "safety", "stranger", "bully", "bullying", "private"}},
	{"math", []string{"math", "maths", "mathematics", "number", "numbers", "count"}},
	{"science", []string{"science", "space", "planet", "planets", "animal", "animals", "experiment"}},
}

// fallbackResponses 年龄段 → 话题 → 固定回复
var fallbackResponses = map[string]map[string]string{
	models.AgeBand8To10: {
		"greeting": "Hi there! I'm TechPal, your friendly tech buddy! What would you like to learn about today? 😊",
		"computer": "A computer is like a super-smart helper! It has a brain called a processor that follows instructions really, really fast.",
		"internet": "The internet is like a giant web connecting computers all over the world so they can share pictures, videos, and messages!",
		"coding":   "Coding is how we tell computers what to do, like writing a recipe! You can try Scratch to make your own games with colorful blocks.",
		"safety":   "Great question! Always remember: never share your name, school, or where you live online, and tell a grown-up if anything online makes you feel weird.",
		"math":     "Math is everywhere! It helps us count, measure, and solve puzzles. What math question can I help you with?",
		"science":  "Science helps us discover how the world works, from tiny bugs to giant planets! What would you like to explore?",
		"default":  "That's a fun question! I'm having a little trouble thinking right now, but try asking me about computers, coding, or the internet!",
	},
	models.AgeBand11To13: {
		"greeting": "Hey! I'm TechPal. Ask me anything about computers, coding, or how the internet works!",
		"computer": "A computer works by running instructions through its processor (CPU). Memory keeps things handy while it works, and storage keeps your files safe when it's off.",
		"internet": "The internet is a worldwide network of connected computers. When you visit a website, your device sends a request to a server, which sends the page back to you.",
		"coding":   "Coding means writing instructions a computer can follow. Python is a great language to start with because it reads almost like English.",
		"safety":   "Online safety matters! Keep personal details private, think before you share, and talk to a trusted adult if anyone online makes you uncomfortable.",
		"math":     "Math is a great skill for tech! Computers use math all the time, from drawing graphics to keeping your games running smoothly.",
		"science":  "Science is all about asking questions and testing ideas. Technology and science work together: computers help scientists study space, weather, and more.",
		"default":  "Good question! I'm having trouble reaching my full brain right now. Try asking about computers, coding, the internet, or science!",
	},
	models.AgeBand14To16: {
		"greeting": "Hi, I'm TechPal. I can help with programming, technology concepts, and science questions. What are you working on?",
		"computer": "At its core a computer executes machine instructions on the CPU, using RAM for fast working memory and persistent storage for long-term data. Everything else builds on that loop.",
		"internet": "The internet is a global network of networks. Devices communicate using protocols like TCP/IP, and the web runs on top of it using HTTP to move pages between servers and browsers.",
		"coding":   "Programming is writing precise instructions for a computer. If you're starting out, Python is beginner-friendly; JavaScript is great if you want to build things for the web.",
		"safety":   "Good online safety habits: keep personal information private, think before posting, be careful with links and downloads, and remember that people online aren't always who they say they are.",
		"math":     "Math underpins most of computing: logic, algebra, and statistics show up everywhere from graphics to machine learning. What topic are you looking at?",
		"science":  "Science is the process of forming and testing hypotheses about how things work. Computing plays a big role in modern science, from simulations to data analysis.",
		"default":  "I can't reach my full knowledge base right now. I'm best at questions about technology, programming, and science, so feel free to try one of those.",
	},
}

// FallbackTable 静态降级回复表，系统在所有提供方不可用时的最后一道防线。
// 查表完全确定，无任何外部依赖。
type FallbackTable struct{}

func NewFallbackTable() *FallbackTable {
	return &FallbackTable{}
}

// Lookup 按消息关键词和年龄段查表，未知年龄段按默认年龄段处理
func (t *FallbackTable) Lookup(message, ageBand string) string {
	responses, ok := fallbackResponses[ageBand]
	if !ok {
		responses = fallbackResponses[models.DefaultAgeBand]
	}

	words := messageWords(message)
	for _, topic := range fallbackTopics {
		for _, kw := range topic.keywords {
			if words[kw] {
				return responses[topic.name]
			}
		}
	}

	return responses["default"]
}

// messageWords 把消息拆成小写词集合，去掉首尾标点
func messageWords(message string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(message)) {
		if trimmed := strings.Trim(w, ".,!?;:\"'()"); trimmed != "" {
			words[trimmed] = true
		}
	}
	return words
}
