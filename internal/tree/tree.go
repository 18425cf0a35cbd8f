// Package tree реализует двухуровневое дерево комментариев одного поста
// и слияние в него ответов сервера (создание, правка, реакция, удаление).
//
// Уровней ровно два: корни и их прямые ответы. Ответ на ответ всегда
// прикрепляется к корню ветки, третий уровень не создаётся.
// Порядок узлов — порядок, в котором их прислал сервер; дерево никогда не сортируется.
//
// Tree не потокобезопасен: синхронизация — забота владельца (см. internal/thread).
package tree

import (
	"github.com/pribylovaa/bragboard/internal/models"
)

// InsertResult — исход Insert.
type InsertResult int

const (
	// Inserted — узел добавлен в конец корней или ответов своей ветки.
	Inserted InsertResult = iota
	// Updated — узел с таким ID уже был, обновлены изменяемые поля.
	Updated
	// NeedsRefetch — родитель не найден локально (устаревшее представление),
	// нужно перезапросить список целиком.
	NeedsRefetch
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case NeedsRefetch:
		return "needs_refetch"
	default:
		return "unknown"
	}
}

// Tree — комментарии одного поста.
type Tree struct {
	postID string
	roots  []models.Comment
}

// New возвращает пустое дерево поста.
func New(postID string) *Tree {
	return &Tree{postID: postID}
}

// PostID — идентификатор поста, которому принадлежит дерево.
func (t *Tree) PostID() string {
	return t.postID
}

// Build нормализует список сервера (вложенный или плоский) в двухуровневое дерево:
//   - корни идут в исходном порядке;
//   - ответы прикрепляются к корню своей ветки в порядке появления,
//     ответ на ответ поднимается к корню;
//   - ответы без найденного корня (сироты) отбрасываются без ошибки;
//   - повторы ID после первого вхождения игнорируются.
func Build(postID string, comments []models.Comment) *Tree {
	t := New(postID)

	// Плоский проход в порядке появления: узел, затем его вложенные ответы.
	flat := make([]models.Comment, 0, len(comments))
	var walk func(items []models.Comment, parentID string)
	walk = func(items []models.Comment, parentID string) {
		for _, c := range items {
			nested := c.Replies
			c.Replies = nil
			if parentID != "" && c.ParentID == "" {
				c.ParentID = parentID
			}
			flat = append(flat, c)
			walk(nested, c.ID)
		}
	}
	walk(comments, "")

	parentOf := make(map[string]string, len(flat))
	seen := make(map[string]bool, len(flat))
	for _, c := range flat {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		parentOf[c.ID] = c.ParentID
	}

	// rootOf поднимается по цепочке родителей до корня.
	// Цепочка ограничена числом узлов, чтобы цикл в данных не завис.
	rootOf := func(id string) (string, bool) {
		cur := id
		for i := 0; i <= len(parentOf); i++ {
			parent, ok := parentOf[cur]
			if !ok {
				return "", false
			}
			if parent == "" {
				return cur, true
			}
			cur = parent
		}
		return "", false
	}

	index := make(map[string]int)
	added := make(map[string]bool, len(flat))
	for _, c := range flat {
		if c.ID == "" || added[c.ID] || !c.IsRoot() {
			continue
		}
		added[c.ID] = true
		index[c.ID] = len(t.roots)
		t.roots = append(t.roots, c)
	}

	for _, c := range flat {
		if c.ID == "" || added[c.ID] || c.IsRoot() {
			continue
		}
		rootID, ok := rootOf(c.ID)
		if !ok {
			continue
		}
		i, ok := index[rootID]
		if !ok {
			continue
		}
		added[c.ID] = true
		c.ParentID = rootID
		t.roots[i].Replies = append(t.roots[i].Replies, c)
	}

	return t
}

// Insert сливает созданный сервером комментарий в дерево.
func (t *Tree) Insert(c models.Comment) InsertResult {
	if _, _, ok := t.locate(c.ID); ok {
		t.Update(c)
		return Updated
	}

	if c.IsRoot() {
		c.Replies = cloneReplies(c.ID, c.Replies)
		t.roots = append(t.roots, c)
		return Inserted
	}

	ri, _, ok := t.locate(c.ParentID)
	if !ok {
		return NeedsRefetch
	}

	c.ParentID = t.roots[ri].ID
	c.Replies = nil
	t.roots[ri].Replies = append(t.roots[ri].Replies, c)

	return Inserted
}

// Update заменяет изменяемые поля узла (content, isEdited, reactionCounts,
// currentUserReaction), сохраняя его позицию и ответы.
// Отсутствующий ID — no-op, возвращает false.
func (t *Tree) Update(c models.Comment) bool {
	return t.Apply(c.ID, func(n *models.Comment) {
		n.Content = c.Content
		n.IsEdited = n.IsEdited || c.IsEdited
		n.ReactionCounts = c.ReactionCounts
		n.CurrentUserReaction = c.CurrentUserReaction
	})
}

// Apply вызывает fn для узла с данным ID. Идентичность узла (ID, ParentID,
// PostID, Replies) после fn восстанавливается. Возвращает false, если узла нет.
func (t *Tree) Apply(id string, fn func(*models.Comment)) bool {
	ri, pi, ok := t.locate(id)
	if !ok {
		return false
	}

	n := &t.roots[ri]
	if pi >= 0 {
		n = &t.roots[ri].Replies[pi]
	}

	keepID, keepParent, keepPost, keepReplies := n.ID, n.ParentID, n.PostID, n.Replies
	fn(n)
	n.ID, n.ParentID, n.PostID, n.Replies = keepID, keepParent, keepPost, keepReplies

	return true
}

// Delete удаляет узел. Удаление корня удаляет и все его ответы (каскад).
// Отсутствующий ID — no-op, возвращает false.
func (t *Tree) Delete(id string) bool {
	ri, pi, ok := t.locate(id)
	if !ok {
		return false
	}

	if pi < 0 {
		t.roots = append(t.roots[:ri:ri], t.roots[ri+1:]...)
		return true
	}

	replies := t.roots[ri].Replies
	t.roots[ri].Replies = append(replies[:pi:pi], replies[pi+1:]...)

	return true
}

// Find возвращает копию узла по ID.
func (t *Tree) Find(id string) (models.Comment, bool) {
	ri, pi, ok := t.locate(id)
	if !ok {
		return models.Comment{}, false
	}

	if pi < 0 {
		return cloneRoot(t.roots[ri]), true
	}

	return t.roots[ri].Replies[pi], true
}

// Roots возвращает глубокую копию корней вместе с ответами.
func (t *Tree) Roots() []models.Comment {
	out := make([]models.Comment, 0, len(t.roots))
	for _, r := range t.roots {
		out = append(out, cloneRoot(r))
	}

	return out
}

// Len — число корневых комментариев.
func (t *Tree) Len() int {
	return len(t.roots)
}

// Count — общее число узлов (корни и ответы).
func (t *Tree) Count() int {
	n := len(t.roots)
	for _, r := range t.roots {
		n += len(r.Replies)
	}

	return n
}

// locate ищет узел: сначала среди корней, затем на одном уровне ответов.
// pi == -1 означает, что найден корень.
func (t *Tree) locate(id string) (ri, pi int, ok bool) {
	if id == "" {
		return -1, -1, false
	}

	for i := range t.roots {
		if t.roots[i].ID == id {
			return i, -1, true
		}
	}

	for i := range t.roots {
		for j := range t.roots[i].Replies {
			if t.roots[i].Replies[j].ID == id {
				return i, j, true
			}
		}
	}

	return -1, -1, false
}

func cloneRoot(r models.Comment) models.Comment {
	if r.Replies != nil {
		r.Replies = append([]models.Comment(nil), r.Replies...)
	}

	return r
}

// cloneReplies копирует ответы нового корня, срезая всё глубже второго уровня.
func cloneReplies(rootID string, replies []models.Comment) []models.Comment {
	if len(replies) == 0 {
		return nil
	}

	out := make([]models.Comment, 0, len(replies))
	for _, r := range replies {
		r.ParentID = rootID
		r.Replies = nil
		out = append(out, r)
	}

	return out
}
