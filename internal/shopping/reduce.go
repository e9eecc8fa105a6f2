package shopping

import (
	"strings"
	"time"

	"github.com/dukerupert/compras/internal/model"
)

// The reducers below never modify their input state: slices that change are
// rebuilt, so copies handed out earlier stay valid.

func newList(id, name string, now time.Time) model.ShoppingList {
	return model.ShoppingList{
		ID:        id,
		Name:      name,
		Items:     []model.ShoppingItem{},
		CreatedAt: now,
		IsActive:  true,
	}
}

func addItem(st model.State, draft model.ItemDraft, listID, itemID string, now time.Time) model.State {
	var list model.ShoppingList
	if st.CurrentList == nil {
		// Lazy creation: the first item of a session opens a list.
		list = newList(listID, DefaultListName, now)
	} else {
		list = *st.CurrentList
	}

	item := model.ShoppingItem{
		ID:        itemID,
		Name:      draft.Name,
		Category:  draft.Category,
		Quantity:  draft.Quantity,
		Unit:      draft.Unit,
		Completed: false,
		CreatedAt: now,
	}

	items := make([]model.ShoppingItem, 0, len(list.Items)+1)
	items = append(items, list.Items...)
	list.Items = append(items, item.Clone())

	st.CurrentList = &list
	return st
}

func toggleItem(st model.State, itemID string, now time.Time) model.State {
	if st.CurrentList == nil {
		return st
	}

	list := *st.CurrentList
	list.Items = make([]model.ShoppingItem, len(st.CurrentList.Items))
	copy(list.Items, st.CurrentList.Items)

	for i, item := range list.Items {
		if item.ID != itemID {
			continue
		}
		item.Completed = !item.Completed
		if item.Completed {
			at := now
			item.CompletedAt = &at
		} else {
			item.CompletedAt = nil
		}
		list.Items[i] = item
	}

	st.CurrentList = &list
	return st
}

func removeItem(st model.State, itemID string) model.State {
	if st.CurrentList == nil {
		return st
	}

	list := *st.CurrentList
	list.Items = make([]model.ShoppingItem, 0, len(st.CurrentList.Items))
	for _, item := range st.CurrentList.Items {
		if item.ID != itemID {
			list.Items = append(list.Items, item)
		}
	}

	st.CurrentList = &list
	return st
}

func completeList(st model.State, now time.Time) model.State {
	if st.CurrentList == nil {
		return st
	}

	archived := *st.CurrentList
	at := now
	archived.CompletedAt = &at
	archived.IsActive = false

	history := make([]model.ShoppingList, 0, len(st.ShoppingHistory)+1)
	history = append(history, archived)
	st.ShoppingHistory = append(history, st.ShoppingHistory...)
	st.CurrentList = nil
	return st
}

func startNewList(st model.State, name, listID string, now time.Time) model.State {
	name = strings.TrimSpace(name)
	if name == "" {
		name = NewListName
	}
	list := newList(listID, name, now)
	st.CurrentList = &list
	return st
}

func addWasteReport(st model.State, draft model.WasteDraft, reportID string, now time.Time) model.State {
	report := model.WasteReport{
		ID:             reportID,
		ItemName:       draft.ItemName,
		Category:       draft.Category,
		Reason:         draft.Reason,
		Quantity:       draft.Quantity,
		EstimatedValue: draft.EstimatedValue,
		Date:           now,
	}

	reports := make([]model.WasteReport, 0, len(st.WasteReports)+1)
	reports = append(reports, report.Clone())
	st.WasteReports = append(reports, st.WasteReports...)
	return st
}

func loadData(st model.State, p Partial) model.State {
	if p.SetCurrentList {
		if p.CurrentList == nil {
			st.CurrentList = nil
		} else {
			list := p.CurrentList.Clone()
			list.IsActive = true
			st.CurrentList = &list
		}
	}
	if p.SetHistory {
		st.ShoppingHistory = make([]model.ShoppingList, len(p.ShoppingHistory))
		for i, l := range p.ShoppingHistory {
			st.ShoppingHistory[i] = l.Clone()
		}
	}
	if p.SetWasteReports {
		st.WasteReports = make([]model.WasteReport, len(p.WasteReports))
		for i, r := range p.WasteReports {
			st.WasteReports[i] = r.Clone()
		}
	}
	return st
}
