// Package todo owns the task document: task records, filtered queries,
// field-level mutation, and the dependency overlay between tasks.
//
// The document format (todo.json) follows schema/todo.schema.json:
//
//	{
//	  "todos": [
//	    {
//	      "id": 1,
//	      "title": "Task title",
//	      "description": "Longer form description",
//	      "priority": 5,
//	      "status": "todo",
//	      "category": "feature",
//	      "created_date": "2024-01-01",
//	      "target_date": null,
//	      "completed_date": null,
//	      "notes": null
//	    }
//	  ],
//	  "categories": ["bug", "feature", "enhancement", "docs", "refactor", "test"],
//	  "statuses": ["todo", "in_progress", "testing", "complete"],
//	  "priority_scale": "1-10 (10=highest)",
//	  "dependencies": { "2": [1] }
//	}
//
// Task records may carry ad-hoc custom fields beyond the ones above; they
// round-trip through the Extra side-map. The dependencies index maps a
// dependent task id to the ids it depends on, and is kept acyclic by
// Graph.AddDependency.
//
// The whole document is loaded once at Open and rewritten in full on every
// successful mutation. There is no file locking; concurrent writers of the
// same document lose updates (last writer wins).
package todo
